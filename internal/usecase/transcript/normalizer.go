package transcript

import (
	"regexp"
	"strings"
)

// Normalizer converts timed caption markup (WebVTT style) into plain
// speaker-attributed dialogue. Malformed lines are dropped silently; a
// partial transcript is still usable.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer instance
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

var (
	speakerTagRe = regexp.MustCompile(`^<v\s+([^>]+)>\s*(.*)$`)
	// A line of already-attributed dialogue, as this normalizer emits it.
	// Recognizing it keeps normalization a fixed point.
	plainLabelRe = regexp.MustCompile(`^(\p{L}[\p{L}\p{N} .'\-]{0,40}):\s+(.*)$`)
	digitsOnlyRe = regexp.MustCompile(`^\d+$`)
	spaceRunRe   = regexp.MustCompile(`[ \t]+`)
)

// Normalize renders caption markup as dialogue text. Speaker labels are
// emitted as line-prefixed markers only when the speaker changes;
// consecutive same-speaker lines are merged. Applying Normalize to its own
// output is a no-op.
func (n *Normalizer) Normalize(captionText string) string {
	var lines []string
	currentSpeaker := ""

	appendText := func(text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		if len(lines) == 0 {
			lines = append(lines, text)
			return
		}
		lines[len(lines)-1] += " " + text
	}

	startSpeaker := func(speaker, text string) {
		currentSpeaker = speaker
		line := speaker + ":"
		if text = strings.TrimSpace(text); text != "" {
			line += " " + text
		}
		lines = append(lines, line)
	}

	// Cue payloads can carry several voice spans on one line; each span
	// gets its own line so the per-line matching below sees all of them.
	captionText = strings.ReplaceAll(captionText, "<v ", "\n<v ")

	for _, rawLine := range strings.Split(captionText, "\n") {
		line := strings.TrimSpace(rawLine)

		if line == "" {
			continue
		}
		if line == "WEBVTT" || strings.HasPrefix(line, "WEBVTT ") {
			continue
		}
		if strings.HasPrefix(line, "NOTE") {
			continue
		}
		if strings.Contains(line, "-->") {
			continue
		}
		if digitsOnlyRe.MatchString(line) {
			continue
		}

		if m := speakerTagRe.FindStringSubmatch(line); m != nil {
			speaker := strings.TrimSpace(m[1])
			text := strings.TrimSuffix(strings.TrimSpace(m[2]), "</v>")
			if speaker == currentSpeaker {
				appendText(text)
			} else {
				startSpeaker(speaker, text)
			}
			continue
		}

		if m := plainLabelRe.FindStringSubmatch(line); m != nil {
			speaker := strings.TrimSpace(m[1])
			if speaker == currentSpeaker {
				appendText(m[2])
			} else {
				startSpeaker(speaker, m[2])
			}
			continue
		}

		// Unlabeled non-empty line: appended verbatim
		appendText(line)
	}

	out := strings.Join(lines, "\n")
	out = spaceRunRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

package lavalink

const EffectReset = "Reset"

// Effects lists the audio effect presets offered by the effects selector.
var Effects = []string{
	"Nightcore",
	"Vaporwave",
	"Synth",
	"Bassboost",
	"Metal",
	"Piano",
	"8D",
	EffectReset,
}

func IsEffect(label string) bool {
	for _, e := range Effects {
		if e == label {
			return true
		}
	}
	return false
}

package lightzhl

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/cespare/xxhash/v2"
)

// Large, generated round-trip fixtures; english and repeatedRuns are
// fingerprinted with xxhash so a future change to their generation is
// caught rather than silently shipping a different corpus shape (see
// SPEC_FULL.md §3).
func buildFixtures() map[string][]byte {
	english := bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 4000)
	binaryish := make([]byte, 1<<17)
	for i := range binaryish {
		binaryish[i] = byte(i*2654435761 >> 24)
	}
	repeatedRuns := bytes.Repeat([]byte{0x42}, 1<<17)

	return map[string][]byte{
		"english":      english,
		"binaryish":    binaryish,
		"repeatedRuns": repeatedRuns,
	}
}

var fixtureFingerprints = map[string]uint64{
	"english":      xxhash.Sum64(bytes.Repeat([]byte("The quick brown fox jumps over the lazy dog. "), 4000)),
	"repeatedRuns": xxhash.Sum64(bytes.Repeat([]byte{0x42}, 1<<17)),
}

func TestFixtureFingerprintsStable(t *testing.T) {
	fixtures := buildFixtures()
	for name, want := range fixtureFingerprints {
		got := xxhash.Sum64(fixtures[name])
		if got != want {
			t.Fatalf("fixture %q fingerprint changed: got %#x, want %#x", name, got, want)
		}
	}
}

func TestFixturesRoundtripBothCodecs(t *testing.T) {
	for name, data := range buildFixtures() {
		t.Run(fmt.Sprintf("lightzhl/%s", name), func(t *testing.T) {
			roundtripLightZhl(t, data)
		})
		t.Run(fmt.Sprintf("refpack/%s", name), func(t *testing.T) {
			roundtripRefpack(t, data)
		})
	}
}

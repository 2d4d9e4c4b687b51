package login

import (
	"strings"
	"testing"
)

func TestAgentPlist(t *testing.T) {
	env := map[string]string{
		"HOCUS_TEMPO":    "96",
		"HOCUS_DEVICE":   "Studio <Display>",
		"GROQ_API_KEY":   "secret",
		"HOCUS_WAKELOCK": "",
	}
	got := agentPlist("/Applications/hocus", func(k string) string { return env[k] })

	for _, want := range []string{
		"<string>com.hocus.metronome</string>",
		"<string>/Applications/hocus</string>",
		"<string>-tui=false</string>",
		"<key>HOCUS_TEMPO</key>\n\t\t<string>96</string>",
		"<string>Studio &lt;Display&gt;</string>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("plist missing %q", want)
		}
	}
	if strings.Contains(got, "GROQ_API_KEY") {
		t.Error("unrelated variables must not be copied")
	}
	if strings.Contains(got, "HOCUS_WAKELOCK") {
		t.Error("empty variables must be skipped")
	}
}

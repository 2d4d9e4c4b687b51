// Package login registers hocus as a per-user launchd agent so the menu-bar
// metronome starts with the macOS session.
package login

import (
	"fmt"
	"html"
	"strings"
)

const plistName = "com.hocus.metronome.plist"

// envKeys are copied into the agent so it starts with the current settings.
var envKeys = []string{
	"HOCUS_TEMPO", "HOCUS_VOLUME", "HOCUS_SOUND",
	"HOCUS_BACKEND", "HOCUS_DEVICE", "HOCUS_LATENCY_MS",
	"HOCUS_WAKELOCK", "HOCUS_HOTKEY", "HOCUS_LOG_LEVEL", "HOCUS_LOG_PATH",
}

// agentPlist renders the launchd property list. The agent runs without a
// terminal, so the TUI is turned off.
func agentPlist(exe string, getenv func(string) string) string {
	var env strings.Builder
	for _, key := range envKeys {
		if v := getenv(key); v != "" {
			fmt.Fprintf(&env, "\t\t<key>%s</key>\n\t\t<string>%s</string>\n", key, html.EscapeString(v))
		}
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>Label</key>
	<string>%s</string>
	<key>ProgramArguments</key>
	<array>
		<string>%s</string>
		<string>-tui=false</string>
	</array>
	<key>RunAtLoad</key>
	<true/>
	<key>LimitLoadToSessionType</key>
	<string>Aqua</string>
	<key>EnvironmentVariables</key>
	<dict>
		<key>_HOCUS_BG</key>
		<string>1</string>
%s	</dict>
</dict>
</plist>
`, strings.TrimSuffix(plistName, ".plist"), html.EscapeString(exe), env.String())
}

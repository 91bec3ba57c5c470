package speech

// Voice describes one synthesizer voice reported by the platform.
type Voice struct {
	VoiceURI string `json:"voiceURI"`
	Name     string `json:"name"`
	Lang     string `json:"lang"`
	Default  bool   `json:"default,omitempty"`
}

// Preferences is the singleton text-to-speech configuration, persisted on
// every change.
type Preferences struct {
	IsTtsEnabled     bool    `json:"isTtsEnabled"`
	SelectedVoiceURI string  `json:"selectedVoiceURI,omitempty"`
	Rate             float64 `json:"rate"`
	Pitch            float64 `json:"pitch"`
	Lang             string  `json:"lang"`
}

// DefaultPreferences returns the preferences used before the user has saved
// any.
func DefaultPreferences() Preferences {
	return Preferences{IsTtsEnabled: true, Rate: 1.2, Pitch: 1, Lang: "en-US"}
}

// Event types sent by the browser speech host over the websocket.
const (
	EventListenBegan = "listen_began"
	EventListenEnded = "listen_ended"
	EventListenError = "listen_error"
	EventTranscript  = "transcript"
	EventVoices      = "voices"
)

// Event is one inbound websocket frame from the speech host.
type Event struct {
	Type       string  `json:"type"`
	Error      string  `json:"error,omitempty"`
	Transcript string  `json:"transcript,omitempty"`
	Voices     []Voice `json:"voices,omitempty"`
}

// Command types pushed to the browser speech host.
const (
	CommandSpeak      = "speak"
	CommandCancel     = "cancel"
	CommandListen     = "listen"
	CommandStopListen = "stop_listen"
	CommandAbort      = "abort"
)

// Command is one outbound websocket frame driving the platform synthesizer or
// recognizer.
type Command struct {
	Type     string  `json:"type"`
	Text     string  `json:"text,omitempty"`
	VoiceURI string  `json:"voiceURI,omitempty"`
	Rate     float64 `json:"rate,omitempty"`
	Pitch    float64 `json:"pitch,omitempty"`
	Lang     string  `json:"lang,omitempty"`
}

package speech

import (
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	speechmodel "github.com/elizatalk/backend/internal/model/speech"
	"github.com/elizatalk/backend/internal/service/listen"
	"github.com/elizatalk/backend/internal/service/voice"
)

// Handler bridges the browser speech host to the voice and listen
// controllers over one websocket: synthesizer commands flow out, recognizer
// events flow in.
type Handler struct {
	voiceCtrl  *voice.Controller
	listenCtrl *listen.Controller
	upgrader   websocket.Upgrader
}

// New creates the speech websocket handler.
func New(voiceCtrl *voice.Controller, listenCtrl *listen.Controller) *Handler {
	return &Handler{
		voiceCtrl:  voiceCtrl,
		listenCtrl: listenCtrl,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes wires the websocket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/speech/ws", h.handleWebSocket)
}

// hostConn is one connected speech host. It implements voice.Synthesizer and
// listen.Recognizer by pushing commands down the socket.
type hostConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *hostConn) send(cmd speechmodel.Command) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(cmd)
}

// Speak forwards an utterance to the platform synthesizer.
func (c *hostConn) Speak(u voice.Utterance) error {
	return c.send(speechmodel.Command{
		Type:     speechmodel.CommandSpeak,
		Text:     u.Text,
		VoiceURI: u.VoiceURI,
		Rate:     u.Rate,
		Pitch:    u.Pitch,
		Lang:     u.Lang,
	})
}

// Cancel silences the platform synthesizer.
func (c *hostConn) Cancel() error {
	return c.send(speechmodel.Command{Type: speechmodel.CommandCancel})
}

// Start requests a new recognizer session.
func (c *hostConn) Start() error {
	return c.send(speechmodel.Command{Type: speechmodel.CommandListen})
}

// Stop requests the end of the current recognizer session.
func (c *hostConn) Stop() error {
	return c.send(speechmodel.Command{Type: speechmodel.CommandStopListen})
}

// Abort tears the recognizer session down immediately.
func (c *hostConn) Abort() error {
	return c.send(speechmodel.Command{Type: speechmodel.CommandAbort})
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[speech] upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	host := &hostConn{conn: conn}
	h.voiceCtrl.SetSynthesizer(host)
	h.listenCtrl.SetRecognizer(host)
	defer func() {
		h.voiceCtrl.SetSynthesizer(nil)
		h.listenCtrl.SetRecognizer(nil)
	}()

	log.Printf("[speech] host connected from %s", r.RemoteAddr)

	for {
		var event speechmodel.Event
		if err := conn.ReadJSON(&event); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[speech] read failed: %v", err)
			}
			return
		}

		switch event.Type {
		case speechmodel.EventVoices:
			h.voiceCtrl.SetVoices(r.Context(), event.Voices)
		case speechmodel.EventListenBegan:
			h.listenCtrl.HandleBegan()
		case speechmodel.EventListenEnded:
			h.listenCtrl.HandleEnded()
		case speechmodel.EventListenError:
			h.listenCtrl.HandleError(event.Error)
		case speechmodel.EventTranscript:
			h.listenCtrl.HandleResult(event.Transcript)
		default:
			log.Printf("[speech] unknown event type %q", event.Type)
		}
	}
}

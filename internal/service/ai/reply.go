package ai

// Reply is the wire contract for one model turn. Downstream UI depends on
// this exact three-key shape; Correction and Explanation are nil together or
// set together.
type Reply struct {
	Response    string  `json:"response"`
	Correction  *string `json:"correction"`
	Explanation *string `json:"explanation"`
}

const fallbackResponse = "I apologize, but I didn't receive a proper response. Could you please try again?"

func strptr(s string) *string { return &s }

// Canned replies for the error taxonomy. The collaborator never propagates a
// transport exception; each failure class maps to a distinct pair so the UI
// still renders something coherent.

func networkFailureReply() Reply {
	return Reply{
		Response:    "I'm having trouble connecting to the AI service. Please try again in a moment.",
		Explanation: strptr("Network connection issue. Please check your internet connection and API key."),
	}
}

func authFailureReply() Reply {
	return Reply{
		Response:    "There seems to be an authentication issue. Please check your API key.",
		Explanation: strptr("API key issue. Please check your configuration."),
	}
}

func genericFailureReply() Reply {
	return Reply{
		Response:    "Could you please rephrase that?",
		Explanation: strptr("Sorry, I encountered an error. Let's try that again."),
	}
}

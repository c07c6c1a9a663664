package assistant

// ChatSignals are the client signals posted with a chat turn.
type ChatSignals struct {
	Message string `json:"message"`
}

// BusyNotice is shown when a turn is submitted while another is outstanding.
const BusyNotice = "The assistant is still answering. Please wait for the reply."

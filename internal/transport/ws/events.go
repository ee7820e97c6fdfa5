package ws

// Закрытый набор событий рассылки. Вместо строкового поля "type" и
// динамической диспетчеризации — запечатанный интерфейс, разбираемый
// исчерпывающим switch-ом в encodeEvent.
type Event interface {
	isEvent()
}

// ChatMessage — сообщение чата; уходит всем участникам комнаты,
// включая отправителя.
type ChatMessage struct {
	Message    string
	Sender     string
	Attachment *string
}

// CallAccepted / CallRejected — терминальные решения по звонку.
// CallID опционален и передаётся прозрачно: без него клиенты не могут
// различить параллельные звонки.
type CallAccepted struct {
	CallID string
}

type CallRejected struct {
	CallID string
}

// ErrorNotice уходит только инициатору неудавшейся операции.
type ErrorNotice struct {
	Reason string
}

func (ChatMessage) isEvent()  {}
func (CallAccepted) isEvent() {}
func (CallRejected) isEvent() {}
func (ErrorNotice) isEvent()  {}

type chatPayload struct {
	Message    string  `json:"message"`
	Sender     string  `json:"sender"`
	Attachment *string `json:"attachment"`
}

type callStatusPayload struct {
	Status string `json:"status"`
	CallID string `json:"call_id,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

func encodeEvent(ev Event) any {
	switch e := ev.(type) {
	case ChatMessage:
		return chatPayload{Message: e.Message, Sender: e.Sender, Attachment: e.Attachment}
	case CallAccepted:
		return callStatusPayload{Status: "accepted", CallID: e.CallID}
	case CallRejected:
		return callStatusPayload{Status: "rejected", CallID: e.CallID}
	case ErrorNotice:
		return errorPayload{Error: e.Reason}
	}
	return nil
}

package adminclient

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// GenericError is shown when a failure carries no message of its own.
const GenericError = "Не удалось выполнить запрос"

const (
	textCreated  = "Создано"
	textSaved    = "Сохранено"
	textDeleted  = "Удалено"
	textAssigned = "Назначено"
	textSent     = "Отправлено"
)

// Notice is the banner shown after a mutation. It stays until the next one replaces it.
type Notice struct {
	Kind NoticeKind `json:"kind"`
	Text string     `json:"text"`
}

func (n Notice) IsZero() bool { return n.Kind == "" }

func success(text string) Notice { return Notice{Kind: NoticeSuccess, Text: text} }

func failure(err error) Notice { return Notice{Kind: NoticeError, Text: Message(err)} }

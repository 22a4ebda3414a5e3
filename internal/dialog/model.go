package dialog

type State string

const (
	StateIdle State = "idle"

	// Мастер конвертации: категория -> из чего -> во что -> значения
	StatePickCategory State = "conv_pick_category"
	StatePickFrom     State = "conv_pick_from"
	StatePickTo       State = "conv_pick_to"
	StateAwaitValue   State = "conv_await_value"

	// Пакетная конвертация: ждём .xlsx
	StateAwaitBatch State = "batch_await_file"
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}

// Ключи payload мастера.
const (
	KeyCategory = "category"
	KeyFrom     = "from"
	KeyTo       = "to"
	KeyLastMID  = "last_mid"
)

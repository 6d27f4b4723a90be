package messenger

import "context"

// Button is one inline keyboard button. Pay marks the platform payment button
// on invoice messages.
type Button struct {
	Text     string
	Callback string
	Pay      bool
}

// Row groups buttons displayed on one keyboard line.
type Row []Button

// Invoice describes an in-platform payment invoice.
type Invoice struct {
	Title       string
	Description string
	Payload     string
	Currency    string
	Amount      int64
	Keyboard    []Row
}

// Messenger is the outbound messaging-platform capability used by the bot.
// Implementations talk to the platform's Bot API; the payment core only
// depends on this contract.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, keyboard ...Row) error
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string, keyboard ...Row) error
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string, keyboard ...Row) error
	SendInvoice(ctx context.Context, chatID int64, inv Invoice) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errMessage string) error
}

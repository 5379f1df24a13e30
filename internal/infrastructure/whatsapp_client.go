package infrastructure

import (
	"context"
	"fmt"
	"sync"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// WhatsAppClient wraps one paired WhatsApp line. Each advisor connects their own
// line; inbound direct messages feed the chat log keyed by sender phone.
type WhatsAppClient struct {
	Client *whatsmeow.Client

	UserID int // Owning advisor's user id

	log    *zap.SugaredLogger
	qrCode string
	qrLock sync.RWMutex
}

func NewWhatsAppClient(dbPath string, userID int, log *zap.SugaredLogger) (*WhatsAppClient, error) {
	dbLog := waLog.Stdout("Database", "WARN", true)
	container, err := sqlstore.New(context.Background(), "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	clientLog := waLog.Stdout("Client", "WARN", true)
	client := whatsmeow.NewClient(deviceStore, clientLog)

	return &WhatsAppClient{
		Client: client,
		UserID: userID,
		log:    log,
	}, nil
}

func (w *WhatsAppClient) Connect() error {
	if w.Client.Store.ID == nil {
		// No stored session, new pairing
		qrChan, _ := w.Client.GetQRChannel(context.Background())
		if err := w.Client.Connect(); err != nil {
			return err
		}

		go func() {
			for evt := range qrChan {
				if evt.Event == "code" {
					w.qrLock.Lock()
					w.qrCode = evt.Code
					w.qrLock.Unlock()
					w.log.Infow("whatsapp pairing code ready", "user_id", w.UserID)
				} else {
					w.log.Infow("whatsapp login event", "event", evt.Event, "user_id", w.UserID)
				}
			}
		}()
		return nil
	}

	// Existing session
	if err := w.Client.Connect(); err != nil {
		return err
	}
	w.log.Infow("whatsapp connected with existing session", "user_id", w.UserID)
	return nil
}

func (w *WhatsAppClient) GetQR() string {
	w.qrLock.RLock()
	defer w.qrLock.RUnlock()
	return w.qrCode
}

func (w *WhatsAppClient) IsLoggedIn() bool {
	return w.Client.Store.ID != nil
}

func (w *WhatsAppClient) IsConnected() bool {
	return w.Client.IsConnected() && w.Client.Store.ID != nil
}

// LineInfo returns the connected line's phone number and push name.
func (w *WhatsAppClient) LineInfo() (string, string) {
	if w.Client.Store.ID == nil {
		return "", ""
	}
	return w.Client.Store.ID.User, w.Client.Store.PushName
}

func (w *WhatsAppClient) Logout() error {
	w.qrLock.Lock()
	w.qrCode = ""
	w.qrLock.Unlock()

	if err := w.Client.Logout(context.Background()); err != nil {
		return err
	}
	w.Client.Disconnect()

	// Reconnect to obtain a fresh pairing code
	qrChan, _ := w.Client.GetQRChannel(context.Background())
	if err := w.Client.Connect(); err != nil {
		return fmt.Errorf("reconnect after logout: %w", err)
	}

	go func() {
		for evt := range qrChan {
			if evt.Event == "code" {
				w.qrLock.Lock()
				w.qrCode = evt.Code
				w.qrLock.Unlock()
			}
		}
	}()

	return nil
}

func (w *WhatsAppClient) Disconnect() {
	w.Client.Disconnect()
}

func (w *WhatsAppClient) AddHandler(handler func(interface{})) {
	w.Client.AddEventHandler(handler)
}

func (w *WhatsAppClient) SendMessage(to string, content string) error {
	jid, err := types.ParseJID(to + "@s.whatsapp.net")
	if err != nil {
		return fmt.Errorf("invalid number format: %w", err)
	}

	_, err = w.Client.SendMessage(context.Background(), jid, &waProto.Message{
		Conversation: &content,
	})

	return err
}

// ParseMessage extracts sender phone and text from an inbound event.
func (w *WhatsAppClient) ParseMessage(evt *events.Message) (string, string) {
	sender := evt.Info.Sender.User
	var content string

	if evt.Message.Conversation != nil {
		content = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil {
		content = *evt.Message.ExtendedTextMessage.Text
	}

	return sender, content
}

package infrastructure

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"
)

// WhatsAppManager manages one paired WhatsApp line per advisor.
type WhatsAppManager struct {
	clients map[int]*WhatsAppClient
	mu      sync.RWMutex
	baseDir string
	log     *zap.SugaredLogger

	// HandlerFactory builds the inbound-event handler wired to the chat log.
	HandlerFactory func(userID int) func(interface{})
}

func NewWhatsAppManager(baseDir string, log *zap.SugaredLogger) *WhatsAppManager {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		log.Warnw("could not create device directory", "dir", baseDir, "error", err)
	}

	return &WhatsAppManager{
		clients: make(map[int]*WhatsAppClient),
		baseDir: baseDir,
		log:     log,
	}
}

// GetClient returns the existing client for an advisor (nil if none).
func (m *WhatsAppManager) GetClient(userID int) *WhatsAppClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[userID]
}

func (m *WhatsAppManager) GetOrCreateClient(userID int) (*WhatsAppClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[userID]; exists {
		return client, nil
	}

	dbPath := fmt.Sprintf("%s/user_%d.db", m.baseDir, userID)
	client, err := NewWhatsAppClient(dbPath, userID, m.log)
	if err != nil {
		return nil, fmt.Errorf("create whatsapp client for user %d: %w", userID, err)
	}

	if m.HandlerFactory != nil {
		client.AddHandler(m.HandlerFactory(userID))
	}

	m.clients[userID] = client
	return client, nil
}

func (m *WhatsAppManager) ConnectClient(userID int) (*WhatsAppClient, error) {
	client, err := m.GetOrCreateClient(userID)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect whatsapp for user %d: %w", userID, err)
	}

	return client, nil
}

// LogoutClient logs out an advisor's line. A missing or already-disconnected
// client counts as logged out.
func (m *WhatsAppManager) LogoutClient(userID int) error {
	m.mu.RLock()
	client, exists := m.clients[userID]
	m.mu.RUnlock()

	if !exists || client == nil {
		return nil
	}

	if !client.IsLoggedIn() && !client.Client.IsConnected() {
		m.mu.Lock()
		delete(m.clients, userID)
		m.mu.Unlock()
		return nil
	}

	err := client.Logout()

	m.mu.Lock()
	delete(m.clients, userID)
	m.mu.Unlock()

	return err
}

// DisconnectAll disconnects every line (graceful shutdown).
func (m *WhatsAppManager) DisconnectAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, client := range m.clients {
		client.Disconnect()
	}
	m.clients = make(map[int]*WhatsAppClient)
}

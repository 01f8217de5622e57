package screen

import (
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/ingenzi/console-gateway/internal/gateway"
	"github.com/ingenzi/console-gateway/internal/resource"
	appErrors "github.com/ingenzi/console-gateway/pkg/errors"
)

// Manager holds the live screen controllers per session. Screens are created
// on Enter, discarded on Leave and dropped wholesale when the session goes
// away, mirroring mount/unmount in the browser.
type Manager struct {
	mu        sync.Mutex
	gw        *gateway.Client
	catalogue map[string]resource.Descriptor
	schemas   map[string]Schema
	logger    *zap.Logger
	sessions  map[string]map[string]*Controller
}

// NewManager builds a manager over the full registry catalogue.
func NewManager(gw *gateway.Client, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		gw:        gw,
		catalogue: resource.Catalogue(),
		schemas:   Schemas(),
		logger:    logger,
		sessions:  make(map[string]map[string]*Controller),
	}
}

// Enter returns the controller for (session, registry), creating it when the
// screen is first mounted.
func (m *Manager) Enter(sessionID, registry string) (*Controller, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	screens, ok := m.sessions[sessionID]
	if !ok {
		screens = make(map[string]*Controller)
		m.sessions[sessionID] = screens
	}
	if controller, ok := screens[registry]; ok {
		return controller, nil
	}

	desc, ok := m.catalogue[registry]
	if !ok {
		return nil, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound,
			fmt.Sprintf("unknown screen %q", registry))
	}
	schema, ok := m.schemas[registry]
	if !ok {
		return nil, appErrors.New(appErrors.ErrNotFound.Code, http.StatusNotFound,
			fmt.Sprintf("no schema for screen %q", registry))
	}

	refs := make(map[string]*resource.Client)
	for _, source := range schema.SelectSources() {
		if refDesc, ok := m.catalogue[source]; ok {
			refs[source] = resource.NewClient(refDesc, m.gw)
		}
	}

	controller := NewController(schema, resource.NewClient(desc, m.gw), refs, m.logger)
	screens[registry] = controller
	return controller, nil
}

// Lookup returns an already-mounted controller without creating one.
func (m *Manager) Lookup(sessionID, registry string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	screens, ok := m.sessions[sessionID]
	if !ok {
		return nil, false
	}
	controller, ok := screens[registry]
	return controller, ok
}

// Leave discards one screen when the user navigates away.
func (m *Manager) Leave(sessionID, registry string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if screens, ok := m.sessions[sessionID]; ok {
		delete(screens, registry)
		if len(screens) == 0 {
			delete(m.sessions, sessionID)
		}
	}
}

// DropSession discards every screen of a session (logout, expiry).
func (m *Manager) DropSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
}

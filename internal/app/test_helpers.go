package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/geoview/internal/config"
	"github.com/specialistvlad/geoview/internal/model"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing. A nil loader
// means one that fails every load.
func SetupAppTest(t *testing.T, appConfig *Config, loader config.Loader, engine Engine) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	appConfig.LogLevel = "debug"
	if appConfig.SurfaceID == "" {
		appConfig.SurfaceID = "viewDiv"
	}
	if loader == nil {
		loader = config.LoaderFunc(func(ctx context.Context, paths ...string) (*model.Manifest, error) {
			return nil, errors.New("no loader configured")
		})
	}
	testApp := NewApp(logBuffer, appConfig, loader, engine)

	t.Cleanup(func() {
		if os.Getenv("GEOVIEW_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}

package content

import (
	"github.com/cockroachdb/errors"

	"github.com/spaghettifunk/anima-content/engine/graphics"
)

// ServiceProvider supplies the runtime services content readers need. The
// graphics device is requested at most once per manager.
type ServiceProvider interface {
	GraphicsDevice() (graphics.Device, error)
}

// Services is a fixed ServiceProvider.
type Services struct {
	Device graphics.Device
}

func (s Services) GraphicsDevice() (graphics.Device, error) {
	if s.Device == nil {
		return nil, errors.New("no graphics device service registered")
	}
	return s.Device, nil
}

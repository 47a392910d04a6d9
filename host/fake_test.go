package host

import (
	"context"
	"fmt"

	"github.com/reglet-dev/wapc-host/domain/ports"
)

// recordingModule is a ports.Module that declares a fixed set of imports.
type recordingModule struct {
	declared   map[string]bool
	extra      []ports.ImportSpec
	registered []string
}

func (m *recordingModule) Imports() []ports.ImportSpec { return m.extra }
func (m *recordingModule) Exports() []string           { return nil }

func (m *recordingModule) RegisterImport(namespace, name string, _ ports.Signature, _ ports.ImportFunc) error {
	if !m.declared[name] {
		return fmt.Errorf("%w: %s.%s", ports.ErrImportNotDeclared, namespace, name)
	}
	m.registered = append(m.registered, name)
	return nil
}

func (m *recordingModule) Instantiate(context.Context) (ports.Instance, error) {
	return nil, fmt.Errorf("not supported")
}

func (m *recordingModule) Close(context.Context) error { return nil }

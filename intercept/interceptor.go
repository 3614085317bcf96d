package intercept

import (
	"fmt"
	"sync"
)

// DescriptorInterceptor is the standard Interceptor: it enables one
// provider descriptor on a registry and, on the default registry, makes
// sure the process-wide transport is in place. Provider packages construct
// one per descriptor.
type DescriptorInterceptor struct {
	desc Descriptor
	reg  *Registry

	mu        sync.Mutex
	installed bool
}

// NewDescriptorInterceptor binds desc to reg.
func NewDescriptorInterceptor(desc Descriptor, reg *Registry) *DescriptorInterceptor {
	return &DescriptorInterceptor{desc: desc, reg: reg}
}

func (di *DescriptorInterceptor) Provider() string { return di.desc.Provider }

// Available reports whether the descriptor is complete enough to install.
func (di *DescriptorInterceptor) Available() bool {
	return di.desc.Validate() == nil
}

func (di *DescriptorInterceptor) patchKey() string {
	return "descriptor:" + di.desc.Provider
}

// Install enables the descriptor. Installing an already-installed provider
// is a no-op, even across separate DescriptorInterceptor values for the
// same provider.
func (di *DescriptorInterceptor) Install() error {
	if err := di.desc.Validate(); err != nil {
		return err
	}

	di.mu.Lock()
	defer di.mu.Unlock()
	if di.installed {
		return nil
	}
	if !di.reg.MarkPatched(di.patchKey()) {
		return fmt.Errorf("%s: already installed", di.desc.Provider)
	}

	di.reg.enable(di.desc)
	if di.reg.installDefault {
		InstallDefault(di.reg)
	}
	di.installed = true
	return nil
}

// Uninstall disables the descriptor. When it was the last one enabled on
// the default registry, the process transport is restored too.
func (di *DescriptorInterceptor) Uninstall() error {
	di.mu.Lock()
	defer di.mu.Unlock()
	if !di.installed {
		return nil
	}

	di.reg.disable(di.desc.Provider)
	di.reg.Unmark(di.patchKey())
	di.installed = false

	if di.reg.installDefault && di.reg.enabledCount() == 0 {
		RestoreDefault()
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/tankops/bath-planner/internal/correction"
	"github.com/tankops/bath-planner/internal/modulefile"
	"github.com/tankops/bath-planner/internal/store"
	"github.com/tankops/bath-planner/internal/store/model"
	"github.com/tankops/bath-planner/pkg/log"
)

// SetupStatus tells whether the configuration can be used for calculations.
type SetupStatus struct {
	Configured  bool
	Modules     []correction.Module
	Problems    []string
	ModuleTypes map[correction.ModuleType][]string
	Template    []correction.Module
}

type ModuleService struct {
	store       store.Store
	modulesFile string
	// serializes writes to the modules file
	fileMu sync.Mutex
	logger *log.StructuredLogger
}

type ModuleServiceOption func(*ModuleService)

// WithModulesFile keeps path in sync with every configuration change.
func WithModulesFile(path string) ModuleServiceOption {
	return func(s *ModuleService) {
		s.modulesFile = path
	}
}

func NewModuleService(store store.Store, opts ...ModuleServiceOption) *ModuleService {
	s := &ModuleService{
		store:  store,
		logger: log.NewDebugLogger("module_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (ms *ModuleService) List(ctx context.Context) ([]correction.Module, error) {
	modules, err := ms.store.Module().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list modules: %w", err)
	}
	return modules.ToDomain(), nil
}

func (ms *ModuleService) Get(ctx context.Context, name string) (*correction.Module, error) {
	return lookupModule(ctx, ms.store, name)
}

func (ms *ModuleService) Create(ctx context.Context, module correction.Module) (*correction.Module, error) {
	tracer := ms.logger.WithContext(ctx).Operation("create_module").WithString("module", module.Name).Build()

	if err := module.Validate(); err != nil {
		tracer.Error(err).Log()
		return nil, NewErrInvalidRequest(err)
	}

	count, err := ms.store.Module().Count(ctx)
	if err != nil {
		return nil, err
	}

	created, err := ms.store.Module().Create(ctx, model.NewModule(module, int(count)))
	if err != nil {
		tracer.Error(err).Log()
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, NewErrModuleExists(module.Name)
		}
		return nil, fmt.Errorf("failed to create module: %w", err)
	}

	ms.syncFile(ctx)
	tracer.Success().Log()

	m := created.ToDomain()
	return &m, nil
}

// Update replaces the definition of an existing module. Modules cannot be renamed.
func (ms *ModuleService) Update(ctx context.Context, name string, module correction.Module) (*correction.Module, error) {
	tracer := ms.logger.WithContext(ctx).Operation("update_module").WithString("module", name).Build()

	if module.Name == "" {
		module.Name = name
	}
	if module.Name != name {
		err := NewErrInvalidRequestf("module %q cannot be renamed to %q", name, module.Name)
		tracer.Error(err).Log()
		return nil, err
	}
	if err := module.Validate(); err != nil {
		tracer.Error(err).Log()
		return nil, NewErrInvalidRequest(err)
	}

	updated, err := ms.store.Module().Update(ctx, model.NewModule(module, 0))
	if err != nil {
		tracer.Error(err).Log()
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrModuleNotFound(name)
		}
		return nil, fmt.Errorf("failed to update module: %w", err)
	}

	ms.syncFile(ctx)
	tracer.Success().Log()

	m := updated.ToDomain()
	return &m, nil
}

func (ms *ModuleService) Delete(ctx context.Context, name string) error {
	tracer := ms.logger.WithContext(ctx).Operation("delete_module").WithString("module", name).Build()

	if err := ms.store.Module().Delete(ctx, name); err != nil {
		tracer.Error(err).Log()
		if errors.Is(err, store.ErrRecordNotFound) {
			return NewErrModuleNotFound(name)
		}
		return fmt.Errorf("failed to delete module: %w", err)
	}

	ms.syncFile(ctx)
	tracer.Success().Log()
	return nil
}

// Setup reports whether the stored configuration is usable and offers the module type catalogue
// and an example configuration.
func (ms *ModuleService) Setup(ctx context.Context) (*SetupStatus, error) {
	modules, err := ms.List(ctx)
	if err != nil {
		return nil, err
	}

	status := &SetupStatus{
		Modules:     modules,
		ModuleTypes: correction.ModuleTypes(),
		Template:    modulefile.Defaults(),
	}
	if len(modules) == 0 {
		status.Problems = append(status.Problems, "no modules are configured")
	}
	for _, m := range modules {
		if err := m.Validate(); err != nil {
			status.Problems = append(status.Problems, err.Error())
		}
	}
	status.Configured = len(status.Problems) == 0
	return status, nil
}

// ReplaceAll validates modules and makes them the whole configuration. History is kept for
// modules that survive the replacement.
func (ms *ModuleService) ReplaceAll(ctx context.Context, modules []correction.Module) ([]correction.Module, error) {
	tracer := ms.logger.WithContext(ctx).Operation("replace_modules").WithInt("count", len(modules)).Build()

	if err := ms.replace(ctx, modules); err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	ms.syncFile(ctx)
	tracer.Success().Log()

	return ms.List(ctx)
}

// Import loads modules read from the modules file. Unlike ReplaceAll it never writes the file.
func (ms *ModuleService) Import(ctx context.Context, modules []correction.Module) error {
	tracer := ms.logger.WithContext(ctx).Operation("import_modules").WithInt("count", len(modules)).Build()

	if err := ms.replace(ctx, modules); err != nil {
		tracer.Error(err).Log()
		return err
	}
	tracer.Success().Log()
	return nil
}

// ImportFile loads the configured modules file into the store. A missing file is not an error.
func (ms *ModuleService) ImportFile(ctx context.Context) error {
	if ms.modulesFile == "" {
		return nil
	}
	modules, err := modulefile.Load(ms.modulesFile)
	if err != nil {
		if errors.Is(err, modulefile.ErrNotConfigured) {
			ms.logger.WithContext(ctx).Operation("import_modules_file").WithString("path", ms.modulesFile).Build().
				Step("not_configured").WithString("reason", err.Error()).Log()
			return nil
		}
		return err
	}
	return ms.Import(ctx, modules)
}

// ModulesFile returns the path of the modules file kept in sync, or an empty string.
func (ms *ModuleService) ModulesFile() string {
	return ms.modulesFile
}

func (ms *ModuleService) replace(ctx context.Context, modules []correction.Module) error {
	seen := make(map[string]bool, len(modules))
	for _, m := range modules {
		if err := m.Validate(); err != nil {
			return NewErrInvalidRequest(err)
		}
		if seen[m.Name] {
			return NewErrInvalidRequestf("duplicate module name %q", m.Name)
		}
		seen[m.Name] = true
	}

	ctx, err := ms.store.NewTransactionContext(ctx)
	if err != nil {
		return err
	}

	existing, err := ms.store.Module().List(ctx, nil)
	if err != nil {
		_, _ = store.Rollback(ctx)
		return err
	}
	current := make(map[string]bool, len(existing))
	for _, m := range existing {
		current[m.Name] = true
		if seen[m.Name] {
			continue
		}
		if err := ms.store.Module().Delete(ctx, m.Name); err != nil {
			_, _ = store.Rollback(ctx)
			return fmt.Errorf("failed to delete module %q: %w", m.Name, err)
		}
	}

	for i, m := range modules {
		record := model.NewModule(m, i)
		if current[m.Name] {
			_, err = ms.store.Module().Update(ctx, record)
			if err == nil {
				err = ms.store.Module().SetPosition(ctx, m.Name, i)
			}
		} else {
			_, err = ms.store.Module().Create(ctx, record)
		}
		if err != nil {
			_, _ = store.Rollback(ctx)
			return fmt.Errorf("failed to store module %q: %w", m.Name, err)
		}
	}

	_, err = store.Commit(ctx)
	return err
}

// syncFile writes the stored configuration to the modules file. Failures are logged only: the
// store stays the source of truth.
func (ms *ModuleService) syncFile(ctx context.Context) {
	if ms.modulesFile == "" {
		return
	}
	tracer := ms.logger.WithContext(ctx).Operation("write_modules_file").WithString("path", ms.modulesFile).Build()

	ms.fileMu.Lock()
	defer ms.fileMu.Unlock()

	modules, err := ms.List(ctx)
	if err == nil {
		err = modulefile.Save(ms.modulesFile, modules)
	}
	if err != nil {
		tracer.Error(err).Log()
		return
	}
	tracer.Success().WithInt("count", len(modules)).Log()
}

// lookupModule returns the named module. An empty store yields ErrSetupRequired so callers can
// send the operator to the setup flow.
func lookupModule(ctx context.Context, s store.Store, name string) (*correction.Module, error) {
	m, err := s.Module().Get(ctx, name)
	if err == nil {
		module := m.ToDomain()
		return &module, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}

	count, err := s.Module().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count modules: %w", err)
	}
	if count == 0 {
		return nil, NewErrSetupRequired()
	}
	return nil, NewErrModuleNotFound(name)
}

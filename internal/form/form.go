// Package form реализует состояние формы: значения полей, отложенную валидацию
// и отправку с флагом загрузки.
package form

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mmeshcher/bankop-client/internal/validation"
)

// ErrBusy возвращается при попытке отправить форму, пока идёт предыдущая отправка.
var ErrBusy = errors.New("form submission in progress")

// ValidationError возвращается Submit, если форма не прошла валидацию.
type ValidationError struct {
	Errors map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Errors))
	for name := range e.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	return "invalid fields: " + strings.Join(names, ", ")
}

// Field описывает поле формы и правило его проверки.
type Field struct {
	Name  string
	Rule  validation.Rule
	Value string
}

// Result содержит итог проверки всей формы.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// ValidateFunc проверяет значение по правилу и возвращает текст ошибки.
type ValidateFunc func(rule validation.Rule, raw string) string

// Option настраивает Form.
type Option func(*Form)

// WithDelay задаёт окно тишины для отложенной валидации.
func WithDelay(d time.Duration) Option {
	return func(f *Form) { f.delay = d }
}

// WithValidator подменяет функцию проверки полей.
func WithValidator(fn ValidateFunc) Option {
	return func(f *Form) { f.validate = fn }
}

// WithOnChange задаёт функцию, вызываемую после каждого изменения состояния формы.
func WithOnChange(fn func()) Option {
	return func(f *Form) { f.onChange = fn }
}

type fieldState struct {
	rule    validation.Rule
	value   string
	err     string
	touched bool
}

// Form хранит значения полей, ошибки и флаг загрузки одной формы.
type Form struct {
	mu       sync.Mutex
	order    []string
	fields   map[string]*fieldState
	loading  bool
	delay    time.Duration
	validate ValidateFunc
	onChange func()
	debounce *Debouncer
}

// New создаёт форму с указанными полями.
func New(fields []Field, opts ...Option) *Form {
	f := &Form{
		fields:   make(map[string]*fieldState, len(fields)),
		delay:    DefaultDelay,
		validate: validation.Validate,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.debounce = NewDebouncer(f.delay)

	for _, fld := range fields {
		f.order = append(f.order, fld.Name)
		f.fields[fld.Name] = &fieldState{rule: fld.Rule, value: fld.Value}
	}
	return f
}

// SetValue заменяет значение поля. Для затронутого поля планируется отложенная валидация.
func (f *Form) SetValue(name, value string) {
	f.mu.Lock()
	fs, ok := f.fields[name]
	if !ok || f.loading {
		f.mu.Unlock()
		return
	}
	fs.value = value
	touched := fs.touched
	f.mu.Unlock()

	if touched {
		f.debounce.Schedule(name, func() { f.revalidate(name) })
	}
	f.changed()
}

// SetRule заменяет правило проверки поля, например после обновления баланса.
func (f *Form) SetRule(name string, rule validation.Rule) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fs, ok := f.fields[name]; ok {
		fs.rule = rule
	}
}

// MarkTouched помечает поле затронутым. Повторные вызовы ничего не меняют.
func (f *Form) MarkTouched(name string) {
	f.mu.Lock()
	fs, ok := f.fields[name]
	if !ok || fs.touched {
		f.mu.Unlock()
		return
	}
	fs.touched = true
	f.mu.Unlock()

	f.debounce.Schedule(name, func() { f.revalidate(name) })
}

func (f *Form) revalidate(name string) {
	f.mu.Lock()
	fs, ok := f.fields[name]
	if !ok || !fs.touched {
		f.mu.Unlock()
		return
	}
	rule, value := fs.rule, fs.value
	f.mu.Unlock()

	msg := f.validate(rule, value)

	f.mu.Lock()
	// значение могло смениться, пока шла проверка; тогда уже запланирована новая
	if fs.value == value {
		fs.err = msg
	}
	f.mu.Unlock()

	f.changed()
}

// ValidateAll синхронно проверяет все поля независимо от того, затронуты ли они.
func (f *Form) ValidateAll() Result {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.validateAllLocked()
}

func (f *Form) validateAllLocked() Result {
	res := Result{Valid: true, Errors: make(map[string]string)}
	for _, name := range f.order {
		fs := f.fields[name]
		if msg := f.validate(fs.rule, fs.value); msg != "" {
			res.Valid = false
			res.Errors[name] = msg
		}
	}
	return res
}

// Submit проверяет форму и, если она корректна, выполняет action с выставленным флагом загрузки.
// Если форма некорректна, все поля помечаются затронутыми, ошибки сохраняются,
// а action не вызывается. Пока выполняется action, повторный Submit возвращает ErrBusy.
func (f *Form) Submit(ctx context.Context, action func(ctx context.Context) error) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrBusy
	}

	res := f.validateAllLocked()
	for _, name := range f.order {
		fs := f.fields[name]
		fs.touched = true
		fs.err = res.Errors[name]
		f.debounce.Cancel(name)
	}

	if !res.Valid {
		f.mu.Unlock()
		f.changed()
		return &ValidationError{Errors: res.Errors}
	}

	return f.runLocked(ctx, action)
}

// Do выполняет action с выставленным флагом загрузки без проверки полей.
// Используется для действий, не зависящих от введённых значений (например, удаления).
func (f *Form) Do(ctx context.Context, action func(ctx context.Context) error) error {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return ErrBusy
	}
	return f.runLocked(ctx, action)
}

// runLocked вызывается с захваченным f.mu и освобождает его до вызова action.
func (f *Form) runLocked(ctx context.Context, action func(ctx context.Context) error) (err error) {
	f.loading = true
	f.mu.Unlock()
	f.changed()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit: unexpected failure: %v", r)
		}

		f.mu.Lock()
		f.loading = false
		f.mu.Unlock()
		f.changed()
	}()

	return action(ctx)
}

// Value возвращает текущее значение поля.
func (f *Form) Value(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fs, ok := f.fields[name]; ok {
		return fs.value
	}
	return ""
}

// Error возвращает отображаемую ошибку поля. У незатронутого поля ошибка всегда пустая.
func (f *Form) Error(name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if fs, ok := f.fields[name]; ok && fs.touched {
		return fs.err
	}
	return ""
}

// Errors возвращает все отображаемые ошибки.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	errs := make(map[string]string)
	for name, fs := range f.fields {
		if fs.touched && fs.err != "" {
			errs[name] = fs.err
		}
	}
	return errs
}

// Touched сообщает, затронуто ли поле.
func (f *Form) Touched(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	fs, ok := f.fields[name]
	return ok && fs.touched
}

// Loading сообщает, выполняется ли отправка формы.
func (f *Form) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.loading
}

// Enabled сообщает, доступны ли поля и кнопка отправки.
func (f *Form) Enabled() bool {
	return !f.Loading()
}

// Close отменяет отложенные проверки. Вызывается при закрытии представления.
func (f *Form) Close() {
	f.debounce.Stop()
}

func (f *Form) changed() {
	if f.onChange != nil {
		f.onChange()
	}
}

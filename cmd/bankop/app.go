package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmeshcher/bankop-client/internal/form"
	"github.com/mmeshcher/bankop-client/internal/model"
	"github.com/mmeshcher/bankop-client/internal/notify"
	"github.com/mmeshcher/bankop-client/internal/session"
	"github.com/mmeshcher/bankop-client/internal/store"
	"github.com/mmeshcher/bankop-client/internal/view"
)

var errUsage = errors.New("usage error")

const usage = `usage: bankop [flags] <command> [args]

commands:
  login -email E -password P
  register -name N -email E -password P
  dashboard
  convert -amount N
  transfer -to E -currency OPCOIN|BRL -amount N
  profile [get | set conservador|moderado|arrojado | delete]
  logout
`

// navigator запоминает последний переход. Переход выполняется после завершения команды.
type navigator struct {
	route session.Route
}

func (n *navigator) Navigate(route session.Route) {
	n.route = route
}

// app выполняет команды CLI поверх представлений.
type app struct {
	deps view.Deps
	nav  *navigator
	out  io.Writer
}

func newApp(deps view.Deps, nav *navigator, out io.Writer) *app {
	deps.Nav = nav
	return &app{deps: deps, nav: nav, out: out}
}

// printToast печатает уведомление в out.
func printToast(out io.Writer) func(notify.Toast) {
	return func(t notify.Toast) {
		mark := "+"
		if t.Type == notify.TypeError {
			mark = "!"
		}
		if t.Title != "" {
			fmt.Fprintf(out, "[%s] %s: %s\n", mark, t.Title, t.Description)
			return
		}
		fmt.Fprintf(out, "[%s] %s\n", mark, t.Description)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(a.out, usage)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "login":
		err = a.login(ctx, rest)
	case "register":
		err = a.register(ctx, rest)
	case "dashboard":
		err = a.dashboard(ctx)
	case "convert":
		err = a.convert(ctx, rest)
	case "transfer":
		err = a.transfer(ctx, rest)
	case "profile":
		err = a.profile(ctx, rest)
	case "logout":
		err = view.Logout(ctx, a.deps)
	default:
		fmt.Fprint(a.out, usage)
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if err != nil {
		return a.report(err)
	}
	return a.follow(ctx)
}

// follow выполняет переход, запрошенный представлением.
func (a *app) follow(ctx context.Context) error {
	route := a.nav.route
	a.nav.route = ""

	switch route {
	case session.RouteDashboard:
		return a.dashboard(ctx)
	case session.RouteLogin:
		fmt.Fprintln(a.out, "Sessão encerrada. Entre com: bankop login -email E -password P")
	case session.RouteRegister:
		fmt.Fprintln(a.out, "Crie uma conta com: bankop register -name N -email E -password P")
	}
	return nil
}

// report печатает ошибки полей формы.
func (a *app) report(err error) error {
	var verr *form.ValidationError
	if !errors.As(err, &verr) {
		return err
	}

	names := make([]string, 0, len(verr.Errors))
	for name := range verr.Errors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(a.out, "%s: %s\n", name, verr.Errors[name])
	}
	return err
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.out)
	email := fs.String("email", "", "e-mail")
	password := fs.String("password", "", "senha")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	v := view.NewLogin(a.deps)
	defer v.Close()

	dec, err := v.Mount(ctx)
	if err != nil || !dec.Render() {
		return err
	}

	v.Form.SetValue(view.FieldEmail, *email)
	v.Form.SetValue(view.FieldPassword, *password)
	return v.Submit(ctx)
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "nome")
	email := fs.String("email", "", "e-mail")
	password := fs.String("password", "", "senha")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	v := view.NewRegister(a.deps)
	defer v.Close()

	dec, err := v.Mount(ctx)
	if err != nil || !dec.Render() {
		return err
	}

	v.Form.SetValue(view.FieldName, *name)
	v.Form.SetValue(view.FieldEmail, *email)
	v.Form.SetValue(view.FieldPassword, *password)
	return v.Submit(ctx)
}

// openDashboard загружает панель. Возвращает false, если представление не отрисовано.
func (a *app) openDashboard(ctx context.Context) (bool, error) {
	d := view.NewDashboard(a.deps)
	dec, err := d.Mount(ctx)
	if err != nil {
		return false, err
	}
	return dec.Render(), nil
}

func (a *app) dashboard(ctx context.Context) error {
	ok, err := a.openDashboard(ctx)
	if err != nil || !ok {
		return err
	}

	sess, err := a.deps.Sessions.Load(ctx)
	if err != nil {
		return err
	}
	state := a.deps.Store.State()
	printDashboard(a.out, sess, state)
	return nil
}

func (a *app) convert(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(a.out)
	amount := fs.String("amount", "", "quantidade de OpCoins")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if ok, err := a.openDashboard(ctx); err != nil || !ok {
		return err
	}

	v := view.NewConvert(a.deps, nil)
	defer v.Close()

	v.SetAmount(*amount)
	fmt.Fprintf(a.out, "Você receberá %s\n", view.FormatBRL(v.Preview()))
	if err := v.Submit(ctx); err != nil {
		return err
	}
	printBalance(a.out, a.deps.Store.State().Balance)
	return nil
}

func (a *app) transfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	fs.SetOutput(a.out)
	to := fs.String("to", "", "e-mail do destinatário")
	currency := fs.String("currency", "", "OPCOIN ou BRL")
	amount := fs.String("amount", "", "quantidade")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	if ok, err := a.openDashboard(ctx); err != nil || !ok {
		return err
	}

	v := view.NewTransfer(a.deps, nil)
	defer v.Close()

	if err := v.Mount(ctx); err != nil {
		return err
	}
	v.SetRecipient(*to)
	v.SetCurrency(strings.ToUpper(*currency))
	v.SetAmount(*amount)
	if err := v.Submit(ctx); err != nil {
		return err
	}
	printBalance(a.out, a.deps.Store.State().Balance)
	return nil
}

func (a *app) profile(ctx context.Context, args []string) error {
	action := "get"
	if len(args) > 0 {
		action = args[0]
	}

	dec, err := a.deps.Gate.Protected(ctx)
	if err != nil {
		return err
	}
	if !dec.Render() {
		a.nav.Navigate(dec.Redirect)
		return nil
	}

	v := view.NewProfile(a.deps, nil)
	defer v.Close()

	if err := v.Mount(ctx); err != nil {
		return err
	}

	switch action {
	case "get":
	case "set":
		if len(args) < 2 {
			return fmt.Errorf("%w: profile set requires a value", errUsage)
		}
		v.SetProfile(args[1])
		if err := v.Submit(ctx); err != nil {
			return err
		}
	case "delete":
		if err := v.Delete(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown profile action %q", errUsage, action)
	}

	fmt.Fprintf(a.out, "Perfil de investidor: %s\n", a.deps.Store.State().Profile)
	return nil
}

func printBalance(out io.Writer, b model.Balance) {
	fmt.Fprintf(out, "OpCoins: %s\n", view.FormatAmount(b.OpCoins))
	fmt.Fprintf(out, "Reais:   %s\n", view.FormatBRL(decimal.NewFromFloat(b.BRLCoins)))
}

func printDashboard(out io.Writer, sess *model.Session, state store.State) {
	fmt.Fprintf(out, "Olá, %s (%s)\n\n", sess.UserName, sess.UserEmail)
	printBalance(out, state.Balance)

	fmt.Fprintln(out, "\nTransações:")
	if len(state.Transactions) == 0 {
		fmt.Fprintln(out, "  nenhuma transação")
		return
	}
	for _, tx := range state.Transactions {
		fmt.Fprintf(out, "  %s  %s\n", model.FormatDate(tx.CreatedAt), describe(tx))
	}
}

func describe(tx model.Transaction) string {
	switch tx.Type.Type {
	case model.TransactionConvert:
		return fmt.Sprintf("Conversão: %s %s -> %s %s",
			view.FormatAmount(tx.AmountFrom), tx.FromCoin.Symbol,
			view.FormatAmount(tx.AmountTo), tx.ToCoin.Symbol)
	case model.TransactionTransfer:
		from, to := "?", "?"
		if tx.UserFrom != nil {
			from = tx.UserFrom.Email
		}
		if tx.UserTo != nil {
			to = tx.UserTo.Email
		}
		return fmt.Sprintf("Transferência: %s %s de %s para %s",
			view.FormatAmount(tx.AmountFrom), tx.FromCoin.Symbol, from, to)
	default:
		return string(tx.Type.Type)
	}
}

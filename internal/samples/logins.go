package samples

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/ladon/pkg/automator"
	"github.com/aretw0/ladon/pkg/dataprovider"
	"github.com/aretw0/ladon/pkg/domain"
)

// Logins is a data-driven script: every selected row of a CSV file is one
// login attempt, checked against the row's "expect" column.
type Logins struct {
	rows     []dataprovider.Row
	accounts map[string]string
}

// NewLogins returns a fresh Logins script.
func NewLogins() automator.Script {
	return &Logins{accounts: map[string]string{"alice": "s3cret", "bob": "hunter2"}}
}

type loginAttempt struct {
	User     string `flag:"user"`
	Password string `flag:"password"`
	Expect   string `flag:"expect"`
}

func (l *Logins) Phases() []automator.Phase {
	return automator.StandardPhases()
}

func (l *Logins) Flags() []*automator.Flag {
	return []*automator.Flag{
		{
			Name:        "data_file",
			Description: "CSV file with user, password and expect (ok or denied) columns",
			Handler: func(_ context.Context, a *automator.Automation, v any) error {
				path, _ := v.(string)
				if err := a.HaltingAssert("A data file must be given", func() any { return path != "" }); err != nil {
					return err
				}
				rows, err := l.load(a, path)
				if err != nil {
					return err
				}
				l.rows = rows
				return nil
			},
		},
		{
			Name:        "rows",
			Description: "comma separated 1-based rows to use, or all",
			Default:     "all",
			Validator: func(v any) error {
				_, err := parseRows(fmt.Sprint(v))
				return err
			},
		},
	}
}

func (l *Logins) Handler(phase string) automator.PhaseFunc {
	switch phase {
	case automator.PhaseSetup:
		return func(ctx context.Context, a *automator.Automation) error {
			return a.HandleFlag(ctx, "data_file")
		}
	case automator.PhaseExecute:
		return l.execute
	case automator.PhaseTeardown:
		return func(_ context.Context, a *automator.Automation) error {
			return a.Result().RecordData("attempts", len(l.rows))
		}
	}
	return nil
}

func (l *Logins) load(a *automator.Automation, path string) ([]dataprovider.Row, error) {
	flag, _ := a.Flag("rows")
	selection, err := parseRows(flag.String(a))
	if err != nil {
		return nil, err
	}
	return dataprovider.Load(path, selection...)
}

func (l *Logins) execute(_ context.Context, a *automator.Automation) error {
	var errs []error
	for i, row := range l.rows {
		var attempt loginAttempt
		if err := domain.NewFlags(row.Flags()).Decode(&attempt); err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", i+1, err))
			continue
		}
		got := "denied"
		if pw, ok := l.accounts[attempt.User]; ok && pw == attempt.Password {
			got = "ok"
		}
		if _, err := a.Assert(fmt.Sprintf("Login of %q should be %s", attempt.User, attempt.Expect),
			func() any { return got == attempt.Expect },
			automator.WithExpected(attempt.Expect), automator.WithActual(got),
		); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// parseRows parses "all" or a comma separated list of row numbers.
// "all" and "" select every row.
func parseRows(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "all") {
		return nil, nil
	}
	var rows []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid row %q: %w", part, err)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/ptstrack/internal/cli"
	"github.com/theirongolddev/ptstrack/internal/model"
	"github.com/theirongolddev/ptstrack/internal/pipeline"
	"github.com/theirongolddev/ptstrack/internal/tracker"
)

type formKind int

const (
	formNone formKind = iota
	formStart
	formMatch
	formEnd
	formTarget
)

// formValues backs every action form. Fields are strings because huh
// inputs edit text; they are parsed once the form completes.
type formValues struct {
	StartPTS  string
	Result    string
	Hero      string
	PTSChange string
	TimeOfDay string
	Duration  string
	EndPTS    string
	Matches   string
	Wins      string
	Target    string
}

// transition is a tracker step ready to hand to the store.
type transition func(model.TrackerState) (model.TrackerState, error)

func newActionForm(kind formKind, state model.TrackerState, now time.Time) (*huh.Form, *formValues) {
	vals := &formValues{
		StartPTS:  strconv.Itoa(state.CurrentPTS),
		Result:    string(model.ResultWin),
		TimeOfDay: string(model.SlotForHour(now.Hour())),
		EndPTS:    strconv.Itoa(state.CurrentPTS),
		Target:    strconv.Itoa(state.TargetPTS),
	}

	var groups []*huh.Group
	switch kind {
	case formStart:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Start a game day").
				Description("PTS at the start of the session").
				Value(&vals.StartPTS).
				Validate(validatePTS),
		))

	case formMatch:
		slots := make([]huh.Option[string], len(model.TimeSlots))
		for i, s := range model.TimeSlots {
			slots[i] = huh.NewOption(cli.FormatSlot(s), string(s))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Result").
				Options(
					huh.NewOption("Win", string(model.ResultWin)),
					huh.NewOption("Loss", string(model.ResultLoss)),
				).
				Value(&vals.Result),
			huh.NewInput().
				Title("Hero").
				Placeholder(model.UnspecifiedHero).
				Value(&vals.Hero),
			huh.NewInput().
				Title("PTS change").
				Placeholder("+20 / -20").
				Value(&vals.PTSChange).
				Validate(validateOptionalInt),
			huh.NewSelect[string]().
				Title("Time of day").
				Options(slots...).
				Value(&vals.TimeOfDay),
			huh.NewInput().
				Title("Duration (minutes)").
				Placeholder("optional").
				Value(&vals.Duration).
				Validate(validateOptionalCount),
		))

	case formEnd:
		fields := []huh.Field{
			huh.NewInput().
				Title("End the game day").
				Description("PTS at the end of the session").
				Value(&vals.EndPTS).
				Validate(validatePTS),
		}
		if state.Current == nil || !state.Current.IsDetailed() {
			fields = append(fields,
				huh.NewInput().
					Title("Matches played").
					Description("Leave empty if you did not keep count").
					Value(&vals.Matches).
					Validate(validateOptionalCount),
				huh.NewInput().
					Title("Matches won").
					Value(&vals.Wins).
					Validate(validateOptionalCount),
			)
		}
		groups = append(groups, huh.NewGroup(fields...))

	case formTarget:
		groups = append(groups, huh.NewGroup(
			huh.NewInput().
				Title("Target PTS").
				Value(&vals.Target).
				Validate(validateTarget),
		))
	}

	form := huh.NewForm(groups...).
		WithTheme(huh.ThemeCharm()).
		WithShowHelp(true)
	return form, vals
}

// buildTransition turns completed form values into a tracker step and a
// short confirmation message.
func buildTransition(kind formKind, v formValues, now time.Time) (transition, string, error) {
	switch kind {
	case formStart:
		pts, err := parseInt(v.StartPTS)
		if err != nil {
			return nil, "", err
		}
		return func(s model.TrackerState) (model.TrackerState, error) {
			return tracker.StartDay(s, pts, now)
		}, fmt.Sprintf("Day started at %d", pts), nil

	case formMatch:
		result, ok := model.ParseResult(v.Result)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q", tracker.ErrInvalidResult, v.Result)
		}
		in := tracker.MatchInput{
			Result:    result,
			PTSChange: pipeline.PTSPerWin,
			Hero:      strings.TrimSpace(v.Hero),
			TimeOfDay: model.TimeOfDay(v.TimeOfDay),
		}
		if result == model.ResultLoss {
			in.PTSChange = -pipeline.PTSPerLoss
		}
		if strings.TrimSpace(v.PTSChange) != "" {
			d, err := parseInt(v.PTSChange)
			if err != nil {
				return nil, "", err
			}
			in.PTSChange = d
		}
		if strings.TrimSpace(v.Duration) != "" {
			d, err := parseInt(v.Duration)
			if err != nil {
				return nil, "", err
			}
			in.Duration = d
		}
		note := fmt.Sprintf("%s recorded (%+d)", strings.ToUpper(string(result[:1]))+string(result[1:]), in.PTSChange)
		return func(s model.TrackerState) (model.TrackerState, error) {
			return tracker.AddMatch(s, in, now)
		}, note, nil

	case formEnd:
		end, err := parseInt(v.EndPTS)
		if err != nil {
			return nil, "", err
		}
		if strings.TrimSpace(v.Matches) == "" && strings.TrimSpace(v.Wins) == "" {
			return func(s model.TrackerState) (model.TrackerState, error) {
				return tracker.EndDay(s, end)
			}, fmt.Sprintf("Day closed at %d", end), nil
		}
		matches, err := parseInt(v.Matches)
		if err != nil {
			return nil, "", err
		}
		wins := 0
		if strings.TrimSpace(v.Wins) != "" {
			if wins, err = parseInt(v.Wins); err != nil {
				return nil, "", err
			}
		}
		return func(s model.TrackerState) (model.TrackerState, error) {
			return tracker.EndDaySimple(s, end, matches, wins)
		}, fmt.Sprintf("Day closed at %d (%dW %dL)", end, wins, matches-wins), nil

	case formTarget:
		target, err := parseInt(v.Target)
		if err != nil {
			return nil, "", err
		}
		return func(s model.TrackerState) (model.TrackerState, error) {
			return tracker.SetTarget(s, target)
		}, fmt.Sprintf("Target set to %d", target), nil
	}
	return nil, "", errors.New("unknown form")
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s), "+"))
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return n, nil
}

func validatePTS(s string) error {
	_, err := parseInt(s)
	return err
}

func validateTarget(s string) error {
	n, err := parseInt(s)
	if err != nil {
		return err
	}
	if n <= 0 {
		return tracker.ErrInvalidTarget
	}
	return nil
}

func validateOptionalInt(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	_, err := parseInt(s)
	return err
}

func validateOptionalCount(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := parseInt(s)
	if err != nil {
		return err
	}
	if n < 0 {
		return errors.New("cannot be negative")
	}
	return nil
}

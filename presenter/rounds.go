package presenter

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/padraicbc/dgapp/domain"
	"github.com/padraicbc/dgapp/state"
)

type RoundListState struct {
	Loading        bool
	Rounds         []domain.Round
	ErrorMessage   string
	Saving         bool
	SuccessMessage string
	CacheStale     bool
}

type RoundDetailState struct {
	Loading      bool
	Round        *domain.Round
	ErrorMessage string
}

// RoundEditForm edits the scores and date of a recorded round. Scores are
// kept as typed.
type RoundEditForm struct {
	RoundID       string
	CourseName    string
	NumberOfHoles int
	Date          time.Time
	Scores        []string
}

func EditRoundForm(r domain.Round) RoundEditForm {
	scores := make([]string, len(r.Scores))
	for i, v := range r.Scores {
		scores[i] = strconv.Itoa(v)
	}
	return RoundEditForm{
		RoundID:       r.ID,
		CourseName:    r.Course.Name,
		NumberOfHoles: r.Course.NumberOfHoles,
		Date:          r.Date,
		Scores:        scores,
	}
}

// Apply returns base with the form's scores and date, totals recomputed.
func (f RoundEditForm) Apply(base domain.Round) (domain.Round, error) {
	if f.RoundID != "" && f.RoundID != base.ID {
		return domain.Round{}, fmt.Errorf("form is for round %s, not %s", f.RoundID, base.ID)
	}
	scores := make([]int, len(f.Scores))
	for i, s := range f.Scores {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v <= 0 {
			return domain.Round{}, fmt.Errorf("%w: score for hole %d must be a positive whole number", domain.ErrValidation, i+1)
		}
		scores[i] = v
	}
	date := f.Date
	if date.IsZero() {
		date = base.Date
	}
	return domain.NewRound(base.ID, base.Player, base.Course, scores, date)
}

// Rounds drives the round history and round detail screens.
type Rounds struct {
	repo   RoundRepository
	list   *state.Store[RoundListState]
	detail *state.Store[RoundDetailState]
	log    *zap.Logger
}

func NewRounds(repo RoundRepository, log *zap.Logger) *Rounds {
	return &Rounds{
		repo:   repo,
		list:   state.New(RoundListState{}),
		detail: state.New(RoundDetailState{}),
		log:    nopIfNil(log).Named("rounds"),
	}
}

func (p *Rounds) List() RoundListState     { return p.list.Get() }
func (p *Rounds) Detail() RoundDetailState { return p.detail.Get() }

func (p *Rounds) SubscribeList(fn func(RoundListState)) func() {
	return p.list.Subscribe(fn)
}

func (p *Rounds) SubscribeDetail(fn func(RoundDetailState)) func() {
	return p.detail.Subscribe(fn)
}

func (p *Rounds) Load(ctx context.Context, forceRefresh bool) error {
	p.list.Update(func(st RoundListState) RoundListState {
		st.Loading = true
		st.ErrorMessage = ""
		return st
	})

	rounds, err := p.repo.GetRounds(ctx, forceRefresh)
	stale, err := settle(err)
	if err != nil {
		p.log.Warn("load rounds", zap.Error(err))
		p.list.Update(func(st RoundListState) RoundListState {
			st.Loading = false
			st.ErrorMessage = "Failed to load rounds: " + err.Error()
			return st
		})
		return err
	}

	p.list.Update(func(st RoundListState) RoundListState {
		st.Loading = false
		st.Rounds = rounds
		st.CacheStale = stale || repoStale(p.repo)
		return st
	})
	return nil
}

func (p *Rounds) Open(ctx context.Context, id string) error {
	p.detail.Set(RoundDetailState{Loading: true})

	r, err := p.repo.GetRound(ctx, id)
	if _, err = settle(err); err != nil {
		p.detail.Set(RoundDetailState{ErrorMessage: "Failed to load round details: " + err.Error()})
		return err
	}
	p.detail.Set(RoundDetailState{Round: &r})
	return nil
}

// Update applies form to base and saves it.
func (p *Rounds) Update(ctx context.Context, base domain.Round, form RoundEditForm) (domain.Round, error) {
	p.list.Update(func(st RoundListState) RoundListState {
		st.Saving = true
		st.ErrorMessage = ""
		st.SuccessMessage = ""
		return st
	})

	round, err := form.Apply(base)
	if err == nil {
		round, err = p.repo.UpdateRound(ctx, round)
	}
	stale, err := settle(err)
	if err != nil {
		p.log.Warn("update round", zap.String("id", base.ID), zap.Error(err))
		p.list.Update(func(st RoundListState) RoundListState {
			st.Saving = false
			st.ErrorMessage = "Failed to update round: " + err.Error()
			return st
		})
		return domain.Round{}, err
	}

	p.list.Update(func(st RoundListState) RoundListState {
		st.Saving = false
		st.SuccessMessage = "Round updated successfully."
		st.CacheStale = st.CacheStale || stale
		return st
	})
	if d := p.detail.Get(); d.Round != nil && d.Round.ID == round.ID {
		p.detail.Set(RoundDetailState{Round: &round})
	}
	_ = p.Load(ctx, true)
	return round, nil
}

func (p *Rounds) Delete(ctx context.Context, id string) error {
	p.list.Update(func(st RoundListState) RoundListState {
		st.Loading = true
		st.ErrorMessage = ""
		st.SuccessMessage = ""
		return st
	})

	stale, err := settle(p.repo.DeleteRound(ctx, id))
	if err != nil {
		p.log.Warn("delete round", zap.String("id", id), zap.Error(err))
		p.list.Update(func(st RoundListState) RoundListState {
			st.Loading = false
			st.ErrorMessage = "Error while deleting the round: " + err.Error()
			return st
		})
		return err
	}

	p.list.Update(func(st RoundListState) RoundListState {
		st.Loading = false
		st.SuccessMessage = "Round deleted successfully."
		st.Rounds = slices.DeleteFunc(slices.Clone(st.Rounds), func(r domain.Round) bool { return r.ID == id })
		st.CacheStale = st.CacheStale || stale
		return st
	})
	_ = p.Load(ctx, true)
	return nil
}

// SetSuccess shows msg, e.g. after a scoring session saved a round.
func (p *Rounds) SetSuccess(msg string) {
	p.list.Update(func(st RoundListState) RoundListState {
		st.SuccessMessage = msg
		return st
	})
}

func (p *Rounds) ClearSuccess() { p.SetSuccess("") }

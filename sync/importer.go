// ABOUTME: Merge-on-import for contacts received from a scanned QR payload
// ABOUTME: Plans add/merge decisions and applies them with a caller-supplied resolver
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mycrew/mycrew/models"
)

// ContactStore is the part of a contact store the importer needs.
type ContactStore interface {
	GetAll(ctx context.Context) ([]models.Contact, error)
	Get(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, contact *models.Contact) (string, error)
	Update(ctx context.Context, contact *models.Contact) error
}

type Action int

const (
	ActionAdd Action = iota
	ActionMerge
)

func (a Action) String() string {
	if a == ActionMerge {
		return "merge"
	}
	return "add"
}

// Decision pairs an incoming contact with what the importer proposes.
// Existing is set for ActionMerge.
type Decision struct {
	Incoming models.Contact
	Action   Action
	Existing *models.Contact
}

type Choice int

const (
	ChoiceMerge Choice = iota
	ChoiceSkip
	ChoiceAdd
)

// ParseChoice accepts "merge", "skip" and "add".
func ParseChoice(s string) (Choice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "merge":
		return ChoiceMerge, nil
	case "skip":
		return ChoiceSkip, nil
	case "add":
		return ChoiceAdd, nil
	default:
		return 0, fmt.Errorf("unknown duplicate policy %q (want merge, skip or add)", s)
	}
}

// Resolver decides what to do with an incoming contact that matches an
// existing one. It is only called for ActionMerge decisions.
type Resolver func(ctx context.Context, d Decision) (Choice, error)

// Fixed returns a resolver that always answers choice.
func Fixed(choice Choice) Resolver {
	return func(context.Context, Decision) (Choice, error) {
		return choice, nil
	}
}

var (
	AlwaysMerge = Fixed(ChoiceMerge)
	AlwaysSkip  = Fixed(ChoiceSkip)
	AlwaysAdd   = Fixed(ChoiceAdd)
)

// ErrImportAborted is returned by resolvers that want to stop the import.
var ErrImportAborted = errors.New("import aborted")

type Failure struct {
	Name string
	Err  error
}

type Summary struct {
	Added   int
	Merged  int
	Skipped int
	Failed  []Failure

	// IDs holds the stored id for each added or merged contact, in order.
	IDs []string
}

func (s Summary) String() string {
	msg := fmt.Sprintf("%d added, %d merged, %d skipped", s.Added, s.Merged, s.Skipped)
	if len(s.Failed) > 0 {
		msg += fmt.Sprintf(", %d failed", len(s.Failed))
	}
	return msg
}

type Importer struct {
	store   ContactStore
	matcher *ContactMatcher
}

func NewImporter(store ContactStore) *Importer {
	return &Importer{store: store}
}

// Plan loads the existing book and proposes an action for each incoming
// contact.
func (im *Importer) Plan(ctx context.Context, incoming []models.Contact) ([]Decision, error) {
	existing, err := im.store.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load contacts: %w", err)
	}
	im.matcher = NewContactMatcher(existing)

	decisions := make([]Decision, 0, len(incoming))
	for _, c := range incoming {
		d := Decision{Incoming: c, Action: ActionAdd}
		if match, found := im.matcher.FindMatch(c); found {
			d.Action = ActionMerge
			d.Existing = match
		}
		decisions = append(decisions, d)
	}
	return decisions, nil
}

// Apply executes decisions. A contact repeated within one import is merged
// into the copy added earlier in the same run, without asking. Per-contact
// store failures are collected in the summary; resolver errors stop the run.
func (im *Importer) Apply(ctx context.Context, decisions []Decision, resolve Resolver) (Summary, error) {
	var summary Summary
	if im.matcher == nil {
		im.matcher = NewContactMatcher(nil)
	}

	for _, d := range decisions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		choice := ChoiceAdd
		target := d.Existing
		if d.Action == ActionMerge {
			var err error
			if choice, err = resolve(ctx, d); err != nil {
				return summary, err
			}
		} else if prior, found := im.matcher.FindMatch(d.Incoming); found {
			choice, target = ChoiceMerge, prior
		}

		switch choice {
		case ChoiceSkip:
			summary.Skipped++
		case ChoiceMerge:
			id, err := im.merge(ctx, target.ID, d.Incoming)
			if err != nil {
				summary.Failed = append(summary.Failed, Failure{Name: d.Incoming.FullName(), Err: err})
				continue
			}
			summary.Merged++
			summary.IDs = append(summary.IDs, id)
		case ChoiceAdd:
			id, err := im.add(ctx, d.Incoming)
			if err != nil {
				summary.Failed = append(summary.Failed, Failure{Name: d.Incoming.FullName(), Err: err})
				continue
			}
			summary.Added++
			summary.IDs = append(summary.IDs, id)
		}
	}
	return summary, nil
}

// Import plans and applies in one step.
func (im *Importer) Import(ctx context.Context, incoming []models.Contact, resolve Resolver) (Summary, error) {
	decisions, err := im.Plan(ctx, incoming)
	if err != nil {
		return Summary{}, err
	}
	return im.Apply(ctx, decisions, resolve)
}

func (im *Importer) add(ctx context.Context, incoming models.Contact) (string, error) {
	c := incoming
	c.ID = "" // the store assigns its own ids
	c.Locations = append([]models.WorkLocation(nil), incoming.Locations...)
	keepFirstPrimary(c.Locations)

	id, err := im.store.Create(ctx, &c)
	if err != nil {
		return "", fmt.Errorf("failed to create contact: %w", err)
	}
	im.matcher.AddContact(&c)
	return id, nil
}

func (im *Importer) merge(ctx context.Context, id string, incoming models.Contact) (string, error) {
	// Load a fresh copy; the matcher may hold a stale one
	existing, err := im.store.Get(ctx, id)
	if err != nil {
		return "", fmt.Errorf("failed to load contact: %w", err)
	}

	merged := MergeContacts(*existing, incoming)
	if err := im.store.Update(ctx, &merged); err != nil {
		return "", fmt.Errorf("failed to update contact: %w", err)
	}
	im.matcher.AddContact(&merged)
	return merged.ID, nil
}

// MergeContacts folds incoming into existing. Empty fields on existing are
// filled, new job titles are appended up to the limit, and locations not
// already known (by country and region) are appended. The existing primary
// location stays primary; notes and favorite never come from incoming.
func MergeContacts(existing, incoming models.Contact) models.Contact {
	merged := existing
	merged.JobTitles = models.CanonicalJobTitles(existing)
	merged.Locations = append([]models.WorkLocation(nil), existing.Locations...)

	fill := func(dst *string, src string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = src
		}
	}
	fill(&merged.LastName, incoming.LastName)
	fill(&merged.Phone, incoming.Phone)
	fill(&merged.Email, incoming.Email)

	for _, title := range models.CanonicalJobTitles(incoming) {
		if !containsFold(merged.JobTitles, title) {
			merged.JobTitles = append(merged.JobTitles, title)
		}
	}
	if len(merged.JobTitles) > models.MaxJobTitles {
		merged.JobTitles = merged.JobTitles[:models.MaxJobTitles]
	}
	merged.NormalizeJobTitles()

	hasPrimary := merged.PrimaryLocation() != nil
	for _, loc := range incoming.Locations {
		if strings.TrimSpace(loc.Country) == "" || knownArea(merged.Locations, loc) {
			continue
		}
		if loc.IsPrimary {
			if hasPrimary {
				loc.IsPrimary = false
			}
			hasPrimary = true
		}
		merged.Locations = append(merged.Locations, loc)
	}
	return merged
}

func knownArea(locs []models.WorkLocation, loc models.WorkLocation) bool {
	for _, l := range locs {
		if l.SameArea(loc) {
			return true
		}
	}
	return false
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

// keepFirstPrimary clears the primary flag on all but the first primary
// location.
func keepFirstPrimary(locs []models.WorkLocation) {
	seen := false
	for i := range locs {
		if locs[i].IsPrimary {
			if seen {
				locs[i].IsPrimary = false
			}
			seen = true
		}
	}
}

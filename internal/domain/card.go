package domain

import (
	"slices"
	"strings"
	"time"
)

type Status string

const (
	StatusActive   Status = "Active"
	StatusComplete Status = "Complete"
	StatusStale    Status = "Stale"
)

var validStatuses = []Status{StatusActive, StatusComplete, StatusStale}

// AllStatuses lists statuses in cycle order.
func AllStatuses() []Status {
	return slices.Clone(validStatuses)
}

// ParseStatus accepts a status token in any case.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range validStatuses {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", ErrInvalidStatus
}

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

var validPriorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// AllPriorities lists priorities from low to high.
func AllPriorities() []Priority {
	return slices.Clone(validPriorities)
}

// ParsePriority accepts a priority token in any case.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range validPriorities {
		if strings.EqualFold(raw, string(p)) {
			return p, nil
		}
	}
	return "", ErrInvalidPriority
}

type Card struct {
	ID          ID
	Name        string
	Description string
	Status      Status
	Priority    Priority
	Due         *time.Time
	Created     time.Time
	Modified    time.Time
	Completed   *time.Time
	Tags        []string
	Comments    []string
}

type CardInput struct {
	Name        string
	Description string
	Priority    Priority
	Due         *time.Time
	Tags        []string
	Comments    []string
}

// NewCard validates input and constructs a card created at now.
func NewCard(id ID, in CardInput, now time.Time) (Card, error) {
	in.Name = strings.TrimSpace(in.Name)
	if id.IsZero() {
		return Card{}, ErrInvalidID
	}
	if in.Name == "" {
		return Card{}, ErrInvalidName
	}
	if in.Priority == "" {
		in.Priority = PriorityLow
	}
	if !slices.Contains(validPriorities, in.Priority) {
		return Card{}, ErrInvalidPriority
	}
	ts := WallClock(now)
	return Card{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Status:      StatusActive,
		Priority:    in.Priority,
		Due:         wallClockPtr(in.Due),
		Created:     ts,
		Modified:    ts,
		Tags:        NormalizeTags(in.Tags),
		Comments:    normalizeComments(in.Comments),
	}, nil
}

// Rename updates the card name.
func (c *Card) Rename(name string, now time.Time) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	c.Name = name
	c.touch(now)
	return nil
}

// SetDescription replaces the description.
func (c *Card) SetDescription(description string, now time.Time) {
	c.Description = description
	c.touch(now)
}

// SetStatus keeps Completed in step with the Complete status.
func (c *Card) SetStatus(status Status, now time.Time) error {
	if !slices.Contains(validStatuses, status) {
		return ErrInvalidStatus
	}
	ts := WallClock(now)
	switch {
	case status == StatusComplete && c.Completed == nil:
		c.Completed = &ts
	case status != StatusComplete:
		c.Completed = nil
	}
	c.Status = status
	c.touch(now)
	return nil
}

// SetPriority updates priority.
func (c *Card) SetPriority(priority Priority, now time.Time) error {
	if !slices.Contains(validPriorities, priority) {
		return ErrInvalidPriority
	}
	c.Priority = priority
	c.touch(now)
	return nil
}

// SetDue sets or clears the due date.
func (c *Card) SetDue(due *time.Time, now time.Time) {
	c.Due = wallClockPtr(due)
	c.touch(now)
}

// SetTags replaces tags after normalizing them.
func (c *Card) SetTags(tags []string, now time.Time) {
	c.Tags = NormalizeTags(tags)
	c.touch(now)
}

// SetComments replaces comments.
func (c *Card) SetComments(comments []string, now time.Time) {
	c.Comments = normalizeComments(comments)
	c.touch(now)
}

// AddComment appends one non-empty comment.
func (c *Card) AddComment(comment string, now time.Time) error {
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return ErrInvalidComment
	}
	c.Comments = append(c.Comments, comment)
	c.touch(now)
	return nil
}

// Touch marks the card modified without changing content.
func (c *Card) Touch(now time.Time) {
	c.touch(now)
}

func (c *Card) touch(now time.Time) {
	ts := WallClock(now)
	if ts.Before(c.Created) {
		ts = c.Created
	}
	c.Modified = ts
}

// HasTag compares case-folded.
func (c Card) HasTag(tag string) bool {
	tag = NormalizeTag(tag)
	for _, existing := range c.Tags {
		if NormalizeTag(existing) == tag {
			return true
		}
	}
	return false
}

// Validate checks the invariants a decoded card must satisfy.
func (c Card) Validate() error {
	if c.ID.IsZero() {
		return ErrInvalidID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrInvalidName
	}
	if !slices.Contains(validStatuses, c.Status) {
		return ErrInvalidStatus
	}
	if !slices.Contains(validPriorities, c.Priority) {
		return ErrInvalidPriority
	}
	for _, tag := range c.Tags {
		if strings.TrimSpace(tag) == "" {
			return ErrInputValidation
		}
	}
	return nil
}

// Clone returns a deep copy of c.
func (c Card) Clone() Card {
	out := c
	out.Due = clonePtr(c.Due)
	out.Completed = clonePtr(c.Completed)
	out.Tags = slices.Clone(c.Tags)
	out.Comments = slices.Clone(c.Comments)
	return out
}

// SameContent reports whether two cards carry the same user-editable values,
// ignoring the bookkeeping timestamps.
func (c Card) SameContent(other Card) bool {
	return c.ID == other.ID &&
		c.Name == other.Name &&
		c.Description == other.Description &&
		c.Status == other.Status &&
		c.Priority == other.Priority &&
		equalTimePtr(c.Due, other.Due) &&
		slices.Equal(c.Tags, other.Tags) &&
		slices.Equal(c.Comments, other.Comments)
}

// NormalizeTag is the comparison form of a tag.
func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

// NormalizeTags trims, drops empties and removes case-insensitive duplicates
// while keeping the first spelling and the original order.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := map[string]struct{}{}
	for _, raw := range tags {
		tag := strings.TrimSpace(raw)
		if tag == "" {
			continue
		}
		key := NormalizeTag(tag)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeComments(comments []string) []string {
	out := make([]string, 0, len(comments))
	for _, raw := range comments {
		comment := strings.TrimSpace(raw)
		if comment == "" {
			continue
		}
		out = append(out, comment)
	}
	return out
}

func clonePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	ts := *t
	return &ts
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

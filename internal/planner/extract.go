package planner

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pep299/study-planner/internal/model"
)

// ErrNoJSONObject is returned when a response has no {...} span
var ErrNoJSONObject = errors.New("no JSON object in response")

// MalformedResponseError reports a provider response that could not be
// turned into a usable plan.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed plan response: %s: %v", e.Reason, e.Err)
	}
	return "malformed plan response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// ExtractJSONObject returns the text from the first '{' to the last '}'
// inclusive, tolerating prose around the payload.
func ExtractJSONObject(raw string) (string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return "", ErrNoJSONObject
	}
	return raw[start : end+1], nil
}

// flexInt accepts 10, 10.0 and "10".
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*f = 0
		return nil
	}
	s := strings.Trim(string(b), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", b)
	}
	*f = flexInt(v)
	return nil
}

// DraftMilestone is one decoded milestone before repair
type DraftMilestone struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Week           flexInt  `json:"week"`
	Tasks          []string `json:"tasks"`
	EstimatedHours flexInt  `json:"estimated_hours"`
}

// Draft is a provider plan as decoded, before repair
type Draft struct {
	Topic              string               `json:"topic"`
	Summary            string               `json:"summary"`
	DurationWeeks      flexInt              `json:"duration_weeks"`
	LearningObjectives []string             `json:"learning_objectives"`
	KeyConcepts        []string             `json:"key_concepts"`
	Milestones         []DraftMilestone     `json:"milestones"`
	Resources          []model.ResourceItem `json:"resources"`
	Recommendations    string               `json:"recommendations"`
}

// ParsePlan decodes an extracted JSON object. It checks syntax and types
// only; see Repair for content rules.
func ParsePlan(obj string) (*Draft, error) {
	var d Draft
	if err := json.Unmarshal([]byte(obj), &d); err != nil {
		return nil, &MalformedResponseError{Reason: "decoding plan", Err: err}
	}
	return &d, nil
}

const (
	defaultMilestoneHours = 10
	genericTask           = "Study this week's material and take notes"
)

// Repair validates a decoded plan against the requested topic and duration
// and normalizes what can be fixed. The first milestone for a week wins and
// every week from 1 to weeks must have one.
func Repair(d *Draft, topic string, weeks int) (*model.Plan, error) {
	if strings.TrimSpace(d.Topic) == "" {
		d.Topic = topic
	}
	summary := strings.TrimSpace(d.Summary)
	if summary == "" {
		return nil, &MalformedResponseError{Reason: "missing summary"}
	}
	if len(d.Milestones) == 0 {
		return nil, &MalformedResponseError{Reason: "missing milestones"}
	}

	milestones := make([]model.Milestone, 0, len(d.Milestones))
	prevWeek := 0
	seenWeeks := make(map[int]bool, weeks)
	for i, dm := range d.Milestones {
		title := strings.TrimSpace(dm.Title)
		if title == "" {
			return nil, &MalformedResponseError{Reason: fmt.Sprintf("milestone %d has no title", i+1)}
		}
		week := int(dm.Week)
		if week == 0 {
			week = prevWeek + 1
		}
		prevWeek = week
		if week < 1 || week > weeks || seenWeeks[week] {
			continue
		}
		seenWeeks[week] = true

		tasks := model.MergeUnique(nil, dm.Tasks, 0)
		if len(tasks) == 0 {
			tasks = []string{genericTask}
		}
		hours := int(dm.EstimatedHours)
		if hours <= 0 {
			hours = defaultMilestoneHours
		}

		milestones = append(milestones, model.Milestone{
			Title:          title,
			Description:    strings.TrimSpace(dm.Description),
			Week:           week,
			Tasks:          tasks,
			EstimatedHours: hours,
		})
	}
	if len(milestones) == 0 {
		return nil, &MalformedResponseError{Reason: "no milestones within the requested duration"}
	}
	if len(milestones) != weeks {
		return nil, &MalformedResponseError{Reason: fmt.Sprintf("milestones cover %d of %d weeks", len(milestones), weeks)}
	}
	sort.SliceStable(milestones, func(i, j int) bool { return milestones[i].Week < milestones[j].Week })

	var resources []model.ResourceItem
	for _, r := range d.Resources {
		if strings.TrimSpace(r.Title) != "" {
			resources = append(resources, r)
		}
	}

	return &model.Plan{
		Topic:              strings.TrimSpace(d.Topic),
		Summary:            summary,
		DurationWeeks:      weeks,
		LearningObjectives: model.MergeUnique(nil, d.LearningObjectives, model.MaxObjectives),
		KeyConcepts:        model.MergeUnique(nil, d.KeyConcepts, 0),
		Milestones:         milestones,
		Resources:          resources,
		Recommendations:    strings.TrimSpace(d.Recommendations),
	}, nil
}

// DecodePlan runs the full extraction: locate the object, decode it, repair it.
func DecodePlan(raw, topic string, weeks int) (*model.Plan, error) {
	obj, err := ExtractJSONObject(raw)
	if err != nil {
		return nil, &MalformedResponseError{Reason: "locating JSON object", Err: err}
	}
	d, err := ParsePlan(obj)
	if err != nil {
		return nil, err
	}
	return Repair(d, topic, weeks)
}

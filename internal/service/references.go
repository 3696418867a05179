package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records-api/internal/models"
	"github.com/noah-isme/academic-records-api/internal/repository"
	"github.com/noah-isme/academic-records-api/pkg/config"
)

// ReferenceKind names a by-name reference between collections.
type ReferenceKind string

const (
	// ReferenceSection is Student.Section pointing at Section.Name.
	ReferenceSection ReferenceKind = "section"
	// ReferenceStudent is Result.StudentName pointing at Student.Name.
	ReferenceStudent ReferenceKind = "student"
)

// RenamePolicy describes what happens to referrers when a referenced name changes.
type RenamePolicy struct {
	Kind     ReferenceKind `json:"kind"`
	Target   string        `json:"target"`
	Cascades bool          `json:"cascades"`
}

var renamePolicies = map[ReferenceKind]RenamePolicy{
	ReferenceSection: {Kind: ReferenceSection, Target: "students.section", Cascades: true},
	ReferenceStudent: {Kind: ReferenceStudent, Target: "results.studentName", Cascades: false},
}

// RenamePolicies returns the rename policy table.
func RenamePolicies() []RenamePolicy {
	return []RenamePolicy{renamePolicies[ReferenceSection], renamePolicies[ReferenceStudent]}
}

// ReferenceResolver resolves by-name references by re-reading sibling collections.
type ReferenceResolver struct {
	store  repository.CollectionStore
	ids    *IDGenerator
	policy string
	logger *zap.Logger
}

// NewReferenceResolver constructs a resolver. An empty policy means seed_once.
func NewReferenceResolver(store repository.CollectionStore, ids *IDGenerator, policy string, logger *zap.Logger) *ReferenceResolver {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	if policy != config.RosterPolicySync {
		policy = config.RosterPolicySeedOnce
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceResolver{store: store, ids: ids, policy: policy, logger: logger}
}

// Students loads the persisted students.
func (r *ReferenceResolver) Students(ctx context.Context) ([]models.Student, error) {
	students, _, err := repository.LoadCollection[models.Student](ctx, r.store, models.CollectionStudents)
	return students, err
}

// CountStudentsIn counts students whose section equals name exactly.
func (r *ReferenceResolver) CountStudentsIn(students []models.Student, name string) int {
	count := 0
	for _, s := range students {
		if s.Section == name {
			count++
		}
	}
	return count
}

// SectionOptions lists persisted section names, falling back to the defaults when
// no section is persisted.
func (r *ReferenceResolver) SectionOptions(ctx context.Context) ([]string, error) {
	sections, _, err := repository.LoadCollection[models.Section](ctx, r.store, models.CollectionSections)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return DefaultSectionNames(), nil
	}
	names := make([]string, 0, len(sections))
	for _, s := range sections {
		names = append(names, s.Name)
	}
	return names, nil
}

// Rename propagates a renamed reference according to its policy and returns how many
// referrers were updated.
func (r *ReferenceResolver) Rename(ctx context.Context, kind ReferenceKind, oldName, newName string) (int, error) {
	if oldName == newName {
		return 0, nil
	}
	policy, ok := renamePolicies[kind]
	if !ok || !policy.Cascades {
		r.logger.Info("rename not propagated",
			zap.String("kind", string(kind)),
			zap.String("target", policy.Target),
			zap.String("from", oldName),
			zap.String("to", newName),
		)
		return 0, nil
	}

	students, _, err := repository.LoadCollection[models.Student](ctx, r.store, models.CollectionStudents)
	if err != nil {
		return 0, err
	}
	updated := 0
	for i := range students {
		if students[i].Section == oldName {
			students[i].Section = newName
			updated++
		}
	}
	if updated == 0 {
		return 0, nil
	}
	if err := repository.SaveCollection(ctx, r.store, models.CollectionStudents, students); err != nil {
		return 0, err
	}
	r.logger.Info("section rename cascaded", zap.String("from", oldName), zap.String("to", newName), zap.Int("students", updated))
	return updated, nil
}

// Roster returns the students offered in the result form. Under seed_once an absent or
// empty roster is derived once from result names; under sync missing names are appended
// on every call.
func (r *ReferenceResolver) Roster(ctx context.Context, results []models.Result) ([]models.Student, error) {
	students, _, err := repository.LoadCollection[models.Student](ctx, r.store, models.CollectionStudents)
	if err != nil {
		return nil, err
	}
	if len(students) > 0 && r.policy != config.RosterPolicySync {
		return students, nil
	}

	known := make(map[string]struct{}, len(students))
	ids := make(map[int64]struct{}, len(students))
	for _, s := range students {
		known[s.Name] = struct{}{}
		ids[s.ID] = struct{}{}
	}
	taken := func(id int64) bool {
		_, ok := ids[id]
		return ok
	}

	added := 0
	for _, res := range results {
		name := res.StudentName
		if strings.TrimSpace(name) == "" {
			continue
		}
		if _, ok := known[name]; ok {
			continue
		}
		id := r.ids.Next(taken)
		ids[id] = struct{}{}
		known[name] = struct{}{}
		students = append(students, models.Student{ID: id, Name: name})
		added++
	}
	if added == 0 {
		return students, nil
	}
	if err := repository.SaveCollection(ctx, r.store, models.CollectionStudents, students); err != nil {
		return nil, err
	}
	r.logger.Debug("roster derived from results", zap.String("policy", r.policy), zap.Int("added", added))
	return students, nil
}

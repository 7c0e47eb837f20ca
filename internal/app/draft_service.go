package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"scholarforge/internal/export"
	"scholarforge/internal/model"
)

var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrSectionNotFound = errors.New("section not found")
	ErrNothingToUndo   = errors.New("nothing to undo")
	ErrNothingToRedo   = errors.New("nothing to redo")
)

const defaultHistoryLimit = 50

// defaultDocumentSections seed a new writer document that arrives without any.
var defaultDocumentSections = []struct{ Title, Type string }{
	{"Introduction", "introduction"},
	{"Body", "argument"},
	{"Conclusion", "conclusion"},
}

type DraftService struct {
	draftRepo    DraftStore
	historyLimit int
}

type CreateDraftInput struct {
	UserID    uint
	Kind      model.DraftKind
	Title     string
	Fields    map[string]string
	Content   string
	Sections  []model.Section
	Citations []model.Citation
}

// UpdateDraftInput changes metadata only; content goes through Edit so the
// history stays linear.
type UpdateDraftInput struct {
	Title     *string
	Fields    map[string]string
	Citations *[]model.Citation
}

type SectionInput struct {
	Title   string
	Type    string
	Content string
}

func NewDraftService(draftRepo DraftStore, historyLimit int) *DraftService {
	if historyLimit <= 0 {
		historyLimit = defaultHistoryLimit
	}
	return &DraftService{draftRepo: draftRepo, historyLimit: historyLimit}
}

func (s *DraftService) Create(input CreateDraftInput) (*model.Draft, error) {
	if input.UserID == 0 || !input.Kind.Valid() {
		return nil, ErrInvalidInput
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Untitled"
	}
	if len(title) > 256 {
		return nil, ErrInvalidInput
	}

	draft := &model.Draft{
		UserID:    input.UserID,
		Kind:      input.Kind,
		Title:     title,
		Fields:    input.Fields,
		Content:   input.Content,
		Citations: input.Citations,
	}
	for _, sec := range input.Sections {
		draft.Sections = append(draft.Sections, newSection(sec.Title, sec.Type, sec.Content))
	}
	ensureDefaultSections(draft)
	if draft.Fields == nil {
		draft.Fields = map[string]string{}
	}
	draft.History.Push(draft.Content, s.historyLimit)

	if err := s.draftRepo.Create(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) List(userID uint, kind model.DraftKind) ([]model.Draft, error) {
	if userID == 0 || (kind != "" && !kind.Valid()) {
		return nil, ErrInvalidInput
	}
	return s.draftRepo.ListByUserID(userID, kind)
}

func (s *DraftService) Get(userID, draftID uint) (*model.Draft, error) {
	if userID == 0 || draftID == 0 {
		return nil, ErrInvalidInput
	}
	draft, err := s.draftRepo.GetByIDAndUserID(draftID, userID)
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, ErrDraftNotFound
	}
	ensureDefaultSections(draft)
	return draft, nil
}

// ensureDefaultSections gives a document draft without sections the
// standard outline. Loaded drafts are fixed up the same way.
func ensureDefaultSections(draft *model.Draft) {
	if draft.Kind != model.DraftDocument || len(draft.Sections) > 0 {
		return
	}
	for _, d := range defaultDocumentSections {
		draft.Sections = append(draft.Sections, newSection(d.Title, d.Type, ""))
	}
}

func (s *DraftService) Update(userID, draftID uint, input UpdateDraftInput) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || len(title) > 256 {
			return nil, ErrInvalidInput
		}
		draft.Title = title
	}
	for k, v := range input.Fields {
		if draft.Fields == nil {
			draft.Fields = map[string]string{}
		}
		draft.Fields[k] = v
	}
	if input.Citations != nil {
		draft.Citations = *input.Citations
	}
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) Delete(userID, draftID uint) error {
	if _, err := s.Get(userID, draftID); err != nil {
		return err
	}
	return s.draftRepo.DeleteByIDAndUserID(draftID, userID)
}

// Edit replaces the body and records a snapshot, discarding any redo tail.
func (s *DraftService) Edit(userID, draftID uint, content string) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.History.Push(content, s.historyLimit)
	draft.Content = content
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// ApplyGenerated records generated text as an edit and merges its citations.
func (s *DraftService) ApplyGenerated(userID, draftID uint, content string, citations []model.Citation) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.History.Push(content, s.historyLimit)
	draft.Content = content
	draft.Citations = mergeCitations(draft.Citations, citations)
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) Undo(userID, draftID uint) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	text, ok := draft.History.Undo()
	if !ok {
		return nil, ErrNothingToUndo
	}
	draft.Content = text
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) Redo(userID, draftID uint) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	text, ok := draft.History.Redo()
	if !ok {
		return nil, ErrNothingToRedo
	}
	draft.Content = text
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) AddSection(userID, draftID uint, input SectionInput) (*model.Draft, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrInvalidInput
	}
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	draft.Sections = append(draft.Sections, newSection(input.Title, input.Type, input.Content))
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) UpdateSection(userID, draftID uint, sectionID string, input SectionInput) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	i := draft.SectionIndex(sectionID)
	if i < 0 {
		return nil, ErrSectionNotFound
	}
	if t := strings.TrimSpace(input.Title); t != "" {
		draft.Sections[i].Title = t
	}
	if t := strings.TrimSpace(input.Type); t != "" {
		draft.Sections[i].Type = t
	}
	draft.Sections[i].Content = input.Content
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) DeleteSection(userID, draftID uint, sectionID string) (*model.Draft, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	i := draft.SectionIndex(sectionID)
	if i < 0 {
		return nil, ErrSectionNotFound
	}
	draft.Sections = append(draft.Sections[:i], draft.Sections[i+1:]...)
	if err := s.draftRepo.Save(draft); err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *DraftService) Export(userID, draftID uint, format string) (*export.File, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, ErrInvalidInput
	}
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	return export.Draft(draft, f)
}

func (s *DraftService) Links(userID, draftID uint) ([]export.Segment, error) {
	draft, err := s.Get(userID, draftID)
	if err != nil {
		return nil, err
	}
	return export.SplitMarkdownLinks(draft.Content), nil
}

func (s *DraftService) PurgeUser(_ context.Context, userID uint) error {
	return s.draftRepo.DeleteByUserID(userID)
}

func newSection(title, typ, content string) model.Section {
	if typ == "" {
		typ = "custom"
	}
	return model.Section{
		ID:      uuid.NewString(),
		Title:   strings.TrimSpace(title),
		Type:    typ,
		Content: content,
	}
}

func mergeCitations(existing, added []model.Citation) []model.Citation {
	seen := make(map[string]struct{}, len(existing))
	for _, c := range existing {
		seen[c.URL] = struct{}{}
	}
	for _, c := range added {
		if _, ok := seen[c.URL]; ok && c.URL != "" {
			continue
		}
		seen[c.URL] = struct{}{}
		existing = append(existing, c)
	}
	return existing
}

package service_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"todoapi/internal/adapter/storage/memory"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
)

var ctx = context.Background()

type TodoServiceSuite struct {
	suite.Suite
	Repo port.TodoRepository
	Svc  *service.TodoService
}

func (s *TodoServiceSuite) SetupTest() {
	s.Repo = memory.NewTodoRepository()
	s.Svc = service.NewTodoService(s.Repo)
}

func TestTodoServiceSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(TodoServiceSuite))
}

func (s *TodoServiceSuite) TestCreateTrimsTitleAndDescription() {
	todo, err := s.Svc.Create(ctx, "  buy milk  ", "  from the corner shop  ")

	Expect(err).To(BeNil())
	Expect(todo.Title).To(Equal("buy milk"))
	Expect(todo.Description).To(Equal("from the corner shop"))
	Expect(todo.Completed).To(BeFalse())
	Expect(todo.ID).To(Not(BeEmpty()))
	Expect(todo.CreatedAt).To(Equal(todo.UpdatedAt))
}

func (s *TodoServiceSuite) TestCreateRejectsEmptyTitle() {
	_, err := s.Svc.Create(ctx, "   ", "whatever")

	ve := domain.AsValidationError(err)
	Expect(ve).To(Not(BeNil()))
	Expect(ve.Fields[0].Field).To(Equal("title"))
	Expect(ve.Fields[0].Message).To(Equal("title is required"))
}

func (s *TodoServiceSuite) TestCreateRejectsOverlongTitle() {
	_, err := s.Svc.Create(ctx, strings.Repeat("x", 201), "")

	ve := domain.AsValidationError(err)
	Expect(ve).To(Not(BeNil()))
	Expect(ve.Fields[0].Field).To(Equal("title"))
}

func (s *TodoServiceSuite) TestCreateAcceptsBoundaryLengths() {
	todo, err := s.Svc.Create(ctx, strings.Repeat("t", 200), strings.Repeat("d", 1000))

	Expect(err).To(BeNil())
	Expect(len(todo.Title)).To(Equal(200))
	Expect(len(todo.Description)).To(Equal(1000))
}

func (s *TodoServiceSuite) TestCreateCountsCharactersNotBytes() {
	// 150 two-byte characters: 300 bytes, well within the 200-character limit.
	todo, err := s.Svc.Create(ctx, strings.Repeat("ä", 150), strings.Repeat("ü", 1000))

	Expect(err).To(BeNil())
	Expect(utf8.RuneCountInString(todo.Title)).To(Equal(150))
	Expect(utf8.RuneCountInString(todo.Description)).To(Equal(1000))

	boundary, err := s.Svc.Create(ctx, strings.Repeat("ä", 200), "")

	Expect(err).To(BeNil())
	Expect(utf8.RuneCountInString(boundary.Title)).To(Equal(200))

	_, err = s.Svc.Create(ctx, strings.Repeat("ä", 201), "")
	Expect(domain.AsValidationError(err)).To(Not(BeNil()))

	_, err = s.Svc.Create(ctx, "ok", strings.Repeat("ü", 1001))
	Expect(domain.AsValidationError(err)).To(Not(BeNil()))
}

func (s *TodoServiceSuite) TestUpdateCountsCharactersNotBytes() {
	created, _ := s.Svc.Create(ctx, "plain", "")

	title := strings.Repeat("é", 180)
	updated, err := s.Svc.Update(ctx, created.ID, domain.Patch{Title: &title})

	Expect(err).To(BeNil())
	Expect(utf8.RuneCountInString(updated.Title)).To(Equal(180))
}

func (s *TodoServiceSuite) TestCreateRejectsOverlongDescription() {
	_, err := s.Svc.Create(ctx, "ok", strings.Repeat("d", 1001))

	ve := domain.AsValidationError(err)
	Expect(ve).To(Not(BeNil()))
	Expect(ve.Fields[0].Field).To(Equal("description"))
}

func (s *TodoServiceSuite) TestGetByIDRoundTrip() {
	created, _ := s.Svc.Create(ctx, "task", "details")

	found, err := s.Svc.GetByID(ctx, created.ID)

	Expect(err).To(BeNil())
	Expect(found).To(Equal(created))
}

func (s *TodoServiceSuite) TestGetByIDMalformedIDIsNotFound() {
	_, err := s.Svc.GetByID(ctx, "not-a-valid-id")

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoServiceSuite) TestListNewestFirst() {
	first, _ := s.Svc.Create(ctx, "first", "")
	second, _ := s.Svc.Create(ctx, "second", "")
	third, _ := s.Svc.Create(ctx, "third", "")

	todos, err := s.Svc.List(ctx, "")

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(3))
	Expect(todos[0].ID).To(Equal(third.ID))
	Expect(todos[1].ID).To(Equal(second.ID))
	Expect(todos[2].ID).To(Equal(first.ID))
}

func (s *TodoServiceSuite) TestListStatusFilterPartition() {
	s.Svc.Create(ctx, "done one", "")
	pending, _ := s.Svc.Create(ctx, "still open", "")
	done, _ := s.Svc.Create(ctx, "done two", "")

	s.Svc.Toggle(ctx, done.ID)

	all, _ := s.Svc.List(ctx, "")
	completed, _ := s.Svc.List(ctx, "completed")
	open, _ := s.Svc.List(ctx, "pending")

	Expect(all).To(HaveLen(3))
	Expect(completed).To(HaveLen(1))
	Expect(completed[0].ID).To(Equal(done.ID))
	Expect(open).To(HaveLen(2))
	Expect(open[0].ID).To(Equal(pending.ID))
}

func (s *TodoServiceSuite) TestListUnknownStatusMeansAll() {
	s.Svc.Create(ctx, "a", "")
	s.Svc.Create(ctx, "b", "")

	todos, err := s.Svc.List(ctx, "bogus")

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
}

func (s *TodoServiceSuite) TestUpdatePartialPatch() {
	created, _ := s.Svc.Create(ctx, "original", "keep me")

	title := "  renamed  "
	updated, err := s.Svc.Update(ctx, created.ID, domain.Patch{Title: &title})

	Expect(err).To(BeNil())
	Expect(updated.Title).To(Equal("renamed"))
	Expect(updated.Description).To(Equal("keep me"))
	Expect(updated.Completed).To(BeFalse())
}

func (s *TodoServiceSuite) TestUpdateRejectsBlankTitle() {
	created, _ := s.Svc.Create(ctx, "original", "")

	blank := "   "
	_, err := s.Svc.Update(ctx, created.ID, domain.Patch{Title: &blank})

	Expect(domain.AsValidationError(err)).To(Not(BeNil()))

	// The stored record is untouched.
	found, _ := s.Svc.GetByID(ctx, created.ID)
	Expect(found.Title).To(Equal("original"))
}

func (s *TodoServiceSuite) TestUpdateMissingRecordIsNotFound() {
	title := "anything"
	_, err := s.Svc.Update(ctx, "c2f5a0f4-0000-0000-0000-000000000000", domain.Patch{Title: &title})

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoServiceSuite) TestToggleFlipsAndFlipsBack() {
	created, _ := s.Svc.Create(ctx, "flip me", "")

	toggled, err := s.Svc.Toggle(ctx, created.ID)

	Expect(err).To(BeNil())
	Expect(toggled.Completed).To(BeTrue())

	back, err := s.Svc.Toggle(ctx, created.ID)

	Expect(err).To(BeNil())
	Expect(back.Completed).To(BeFalse())
}

func (s *TodoServiceSuite) TestToggleMalformedIDIsNotFound() {
	_, err := s.Svc.Toggle(ctx, "garbage")

	Expect(err).To(MatchError(domain.ErrNotFound))
}

func (s *TodoServiceSuite) TestDeleteIsIdempotent() {
	created, _ := s.Svc.Create(ctx, "delete me", "")

	deleted, err := s.Svc.Delete(ctx, created.ID)
	Expect(err).To(BeNil())
	Expect(deleted).To(BeTrue())

	again, err := s.Svc.Delete(ctx, created.ID)
	Expect(err).To(BeNil())
	Expect(again).To(BeFalse())

	malformed, err := s.Svc.Delete(ctx, "not-an-id")
	Expect(err).To(BeNil())
	Expect(malformed).To(BeFalse())
}

func (s *TodoServiceSuite) TestStatsPartition() {
	s.Svc.Create(ctx, "one", "")
	two, _ := s.Svc.Create(ctx, "two", "")
	three, _ := s.Svc.Create(ctx, "three", "")

	s.Svc.Toggle(ctx, two.ID)
	s.Svc.Toggle(ctx, three.ID)

	stats, err := s.Svc.Stats(ctx)

	Expect(err).To(BeNil())
	Expect(stats.Total).To(Equal(int64(3)))
	Expect(stats.Completed).To(Equal(int64(2)))
	Expect(stats.Pending).To(Equal(int64(1)))
}

func (s *TodoServiceSuite) TestStatsEmptyStore() {
	stats, err := s.Svc.Stats(ctx)

	Expect(err).To(BeNil())
	Expect(stats.Total).To(BeZero())
	Expect(stats.Completed).To(BeZero())
	Expect(stats.Pending).To(BeZero())
}

func (s *TodoServiceSuite) TestListPaginatedMiddlePage() {
	for i := 1; i <= 25; i++ {
		s.Svc.Create(ctx, fmt.Sprintf("task %02d", i), "")
	}

	page, err := s.Svc.ListPaginated(ctx, 3, 10, "")

	Expect(err).To(BeNil())
	Expect(page.Items).To(HaveLen(5))
	Expect(page.Total).To(Equal(int64(25)))
	Expect(page.TotalPages).To(Equal(int64(3)))
	Expect(page.HasNext()).To(BeFalse())
	Expect(page.HasPrev()).To(BeTrue())

	// Newest first: page 3 of 25 holds the five oldest.
	Expect(page.Items[0].Title).To(Equal("task 05"))
	Expect(page.Items[4].Title).To(Equal("task 01"))
}

func (s *TodoServiceSuite) TestListPaginatedBeyondLastPage() {
	s.Svc.Create(ctx, "only one", "")

	page, err := s.Svc.ListPaginated(ctx, 5, 10, "")

	Expect(err).To(BeNil())
	Expect(page.Items).To(BeEmpty())
	Expect(page.Total).To(Equal(int64(1)))
	Expect(page.TotalPages).To(Equal(int64(1)))
}

func (s *TodoServiceSuite) TestListPaginatedWithFilter() {
	for i := 0; i < 4; i++ {
		todo, _ := s.Svc.Create(ctx, fmt.Sprintf("done %d", i), "")
		s.Svc.Toggle(ctx, todo.ID)
	}

	for i := 0; i < 3; i++ {
		s.Svc.Create(ctx, fmt.Sprintf("open %d", i), "")
	}

	page, err := s.Svc.ListPaginated(ctx, 1, 2, "completed")

	Expect(err).To(BeNil())
	Expect(page.Items).To(HaveLen(2))
	Expect(page.Total).To(Equal(int64(4)))
	Expect(page.TotalPages).To(Equal(int64(2)))
	Expect(page.HasNext()).To(BeTrue())

	for _, item := range page.Items {
		Expect(item.Completed).To(BeTrue())
	}
}

func (s *TodoServiceSuite) TestListPaginatedEmptyStore() {
	page, err := s.Svc.ListPaginated(ctx, 1, 10, "")

	Expect(err).To(BeNil())
	Expect(page.Items).To(BeEmpty())
	Expect(page.Total).To(BeZero())
	Expect(page.TotalPages).To(BeZero())
	Expect(page.HasNext()).To(BeFalse())
	Expect(page.HasPrev()).To(BeFalse())
}

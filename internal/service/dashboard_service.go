package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/greenfield-academy/portal/internal/dto"
	"github.com/greenfield-academy/portal/internal/models"
	appErrors "github.com/greenfield-academy/portal/pkg/errors"
)

// adminDashboardCacheKey stores the composed admin dashboard payload.
const adminDashboardCacheKey = "dash:admin"

type dashUserRepository interface {
	RoleCounts(ctx context.Context) (map[models.Role]int, error)
}

type dashClassRepository interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.ClassInfo, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.ClassInfo, error)
	Count(ctx context.Context) (int, error)
}

type dashTeacherRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Teacher, error)
}

type dashStudentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
}

type dashParentRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Parent, error)
	Children(ctx context.Context, parentID string) ([]models.StudentInfo, error)
}

type dashAssignmentRepository interface {
	UpcomingForStudents(ctx context.Context, studentIDs []string, from time.Time, limit int) ([]models.StudentUpcoming, error)
}

type dashAnnouncementRepository interface {
	ListRecent(ctx context.Context, limit int) ([]models.Announcement, error)
}

type dashEventRepository interface {
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]models.Event, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Users         dashUserRepository
	Classes       dashClassRepository
	Teachers      dashTeacherRepository
	Students      dashStudentRepository
	Parents       dashParentRepository
	Assignments   dashAssignmentRepository
	Announcements dashAnnouncementRepository
	Events        dashEventRepository
	Cache         *CacheService
	Logger        *zap.Logger
}

// DashboardService composes the role-specific landing views.
type DashboardService struct {
	users         dashUserRepository
	classes       dashClassRepository
	teachers      dashTeacherRepository
	students      dashStudentRepository
	parents       dashParentRepository
	assignments   dashAssignmentRepository
	announcements dashAnnouncementRepository
	events        dashEventRepository
	cache         *CacheService
	logger        *zap.Logger
	now           func() time.Time

	upcomingLimit int
	recentLimit   int
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		users:         params.Users,
		classes:       params.Classes,
		teachers:      params.Teachers,
		students:      params.Students,
		parents:       params.Parents,
		assignments:   params.Assignments,
		announcements: params.Announcements,
		events:        params.Events,
		cache:         params.Cache,
		logger:        logger,
		now:           time.Now,
		upcomingLimit: 5,
		recentLimit:   5,
	}
}

// Admin composes the admin dashboard, served from cache when warm.
func (s *DashboardService) Admin(ctx context.Context) (*dto.AdminDashboard, error) {
	var cached dto.AdminDashboard
	if s.cache.Get(ctx, adminDashboardCacheKey, &cached) {
		return &cached, nil
	}

	counts, err := s.users.RoleCounts(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	classCount, err := s.classes.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	announcements, err := s.announcements.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}
	events, err := s.events.ListUpcoming(ctx, s.now().UTC(), s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events")
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	payload := &dto.AdminDashboard{
		Counts: dto.AdminCounts{
			Users:    total,
			Students: counts[models.RoleStudent],
			Teachers: counts[models.RoleTeacher],
			Classes:  classCount,
		},
		Announcements: announcements,
		Events:        events,
	}

	s.cache.Set(ctx, adminDashboardCacheKey, payload)
	return payload, nil
}

// Teacher composes the teacher dashboard for the signed-in account.
func (s *DashboardService) Teacher(ctx context.Context, userID string) (*dto.TeacherDashboard, error) {
	teacher, err := s.teachers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}

	classes, err := s.classes.ListByTeacher(ctx, teacher.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	announcements, err := s.announcements.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}

	return &dto.TeacherDashboard{
		TeacherID:     teacher.ID,
		Classes:       classes,
		Announcements: announcements,
	}, nil
}

// Student composes the student dashboard for the signed-in account.
func (s *DashboardService) Student(ctx context.Context, userID string) (*dto.StudentDashboard, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student profile")
	}

	classes, err := s.classes.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}
	upcoming, err := s.assignments.UpcomingForStudents(ctx, []string{student.ID}, s.now().UTC(), s.upcomingLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	announcements, err := s.announcements.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}

	assignments := make([]models.AssignmentInfo, 0, len(upcoming))
	for _, entry := range upcoming {
		assignments = append(assignments, entry.AssignmentInfo)
	}

	return &dto.StudentDashboard{
		StudentID:     student.ID,
		Classes:       classes,
		Upcoming:      assignments,
		Announcements: announcements,
	}, nil
}

// Parent composes the parent dashboard for the signed-in account. The
// children's upcoming assignments are flattened into one list ordered
// by due date.
func (s *DashboardService) Parent(ctx context.Context, userID string) (*dto.ParentDashboard, error) {
	parent, err := s.parents.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent profile")
	}

	children, err := s.parents.Children(ctx, parent.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load children")
	}

	childIDs := make([]string, 0, len(children))
	names := make(map[string]string, len(children))
	for _, child := range children {
		childIDs = append(childIDs, child.ID)
		names[child.ID] = child.FullName()
	}

	upcoming, err := s.assignments.UpcomingForStudents(ctx, childIDs, s.now().UTC(), s.upcomingLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}
	announcements, err := s.announcements.ListRecent(ctx, s.recentLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcements")
	}

	flattened := make([]dto.ChildAssignment, 0, len(upcoming))
	for _, entry := range upcoming {
		flattened = append(flattened, dto.ChildAssignment{
			StudentID:      entry.StudentID,
			StudentName:    names[entry.StudentID],
			AssignmentInfo: entry.AssignmentInfo,
		})
	}

	return &dto.ParentDashboard{
		ParentID:      parent.ID,
		Children:      children,
		Upcoming:      flattened,
		Announcements: announcements,
	}, nil
}

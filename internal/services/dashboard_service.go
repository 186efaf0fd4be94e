package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/student-service/internal/models"
	"github.com/SAP-F-2025/student-service/internal/repositories"
)

const (
	adminDashboardKey   = "admin:dashboard"
	recentActivityLimit = 10
	adminNoticeLimit    = 5
	growthMonths        = 6
	systemActor         = "System"
	activityTimeLayout  = "2006-01-02 15:04"
	growthMonthLayout   = "2006-01"
)

// Dashboard builds the admin overview. The result is cached in the stats
// cache and dropped whenever users, courses or profiles change.
func (s *adminService) Dashboard(ctx context.Context) (*AdminDashboard, error) {
	var dashboard AdminDashboard
	err := s.cache.Stats.CacheOrExecute(ctx, adminDashboardKey, &dashboard, s.statsTTL, func() (interface{}, error) {
		return s.buildDashboard(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &dashboard, nil
}

func (s *adminService) buildDashboard(ctx context.Context) (*AdminDashboard, error) {
	s.logger.Info("Building admin dashboard")

	stats, err := s.systemStats(ctx)
	if err != nil {
		return nil, err
	}

	activities, err := s.recentActivities(ctx)
	if err != nil {
		return nil, err
	}

	growth, err := s.userGrowth(ctx)
	if err != nil {
		return nil, err
	}

	notices, err := s.repo.Notice().ListActive(ctx, s.db, nil, adminNoticeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notices: %w", err)
	}
	noticeItems := make([]NoticeItem, 0, len(notices))
	for _, n := range notices {
		noticeItems = append(noticeItems, NoticeItem{
			ID:     n.ID,
			Title:  n.Title,
			Date:   n.CreatedAt.Format("2006-01-02"),
			Urgent: n.Priority == models.PriorityUrgent,
		})
	}

	dashboard := &AdminDashboard{
		SystemStats:      *stats,
		RecentActivities: activities,
		UserGrowthData:   growth,
		Notices:          noticeItems,
	}

	if stats.TotalUsers > 0 {
		dashboard.CalculatedStats.ActiveRate = roundFloat(float64(stats.ActiveUsers)/float64(stats.TotalUsers)*100, 1)
	}
	// the month before the current one
	if n := len(growth); n >= 2 {
		dashboard.CalculatedStats.RecentNewStudents = growth[n-2].Students
		dashboard.CalculatedStats.RecentNewTeachers = growth[n-2].Teachers
	}

	return dashboard, nil
}

func (s *adminService) systemStats(ctx context.Context) (*SystemStats, error) {
	dash := s.repo.Dashboard()
	stats := &SystemStats{}
	var err error

	if stats.TotalUsers, err = dash.CountUsers(ctx, s.db, nil); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	active := true
	if stats.ActiveUsers, err = dash.CountUsers(ctx, s.db, &active); err != nil {
		return nil, fmt.Errorf("failed to count active users: %w", err)
	}
	if stats.TotalStudents, err = dash.CountStudents(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count students: %w", err)
	}
	if stats.TotalTeachers, err = dash.CountTeachers(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count teachers: %w", err)
	}
	if stats.TotalCourses, err = dash.CountActiveCourses(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if stats.TotalDepartments, err = dash.CountDepartments(ctx, s.db); err != nil {
		return nil, fmt.Errorf("failed to count departments: %w", err)
	}
	return stats, nil
}

func (s *adminService) recentActivities(ctx context.Context) ([]ActivityItem, error) {
	logs, _, err := s.repo.SystemLog().List(ctx, s.db, repositories.SystemLogFilters{Limit: recentActivityLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}

	now := s.now()
	items := make([]ActivityItem, 0, len(logs))
	for _, l := range logs {
		item := ActivityItem{
			ID:      l.ID,
			User:    systemActor,
			Action:  l.Action,
			Time:    l.CreatedAt.Format(activityTimeLayout),
			TimeAgo: formatTimeAgo(now.Sub(l.CreatedAt)),
			Role:    systemActor,
			Status:  l.Status,
		}
		if l.User != nil {
			item.User = l.User.FullName
			item.Role = string(l.User.Role)
		}
		items = append(items, item)
	}
	return items, nil
}

// userGrowth counts student and teacher signups per calendar month over the
// last six months, oldest first. Months without signups are reported as 0.
func (s *adminService) userGrowth(ctx context.Context) ([]GrowthPoint, error) {
	now := s.now().UTC()
	firstMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(growthMonths - 1), 0)

	signups, err := s.repo.Dashboard().GetSignupsSince(ctx, s.db, firstMonth,
		[]models.UserRole{models.RoleStudent, models.RoleTeacher})
	if err != nil {
		return nil, fmt.Errorf("failed to load signups: %w", err)
	}

	points := make([]GrowthPoint, growthMonths)
	index := make(map[string]int, growthMonths)
	for i := range points {
		month := firstMonth.AddDate(0, i, 0).Format(growthMonthLayout)
		points[i].Month = month
		index[month] = i
	}

	for _, signup := range signups {
		i, ok := index[signup.CreatedAt.UTC().Format(growthMonthLayout)]
		if !ok {
			continue
		}
		switch signup.Role {
		case models.RoleStudent:
			points[i].Students++
		case models.RoleTeacher:
			points[i].Teachers++
		}
	}
	return points, nil
}

func formatTimeAgo(duration time.Duration) string {
	if duration < 0 {
		duration = 0
	}

	if duration < time.Minute {
		return fmt.Sprintf("%d seconds ago", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%d minutes ago", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%d hours ago", int(duration.Hours()))
	} else if duration < 7*24*time.Hour {
		return fmt.Sprintf("%d days ago", int(duration.Hours()/24))
	} else if duration < 30*24*time.Hour {
		return fmt.Sprintf("%d weeks ago", int(duration.Hours()/(24*7)))
	} else if duration < 365*24*time.Hour {
		return fmt.Sprintf("%d months ago", int(duration.Hours()/(24*30)))
	} else {
		return fmt.Sprintf("%d years ago", int(duration.Hours()/(24*365)))
	}
}

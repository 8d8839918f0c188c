package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/keshavmohta09/RosterPulse/internal/model"
	"github.com/keshavmohta09/RosterPulse/internal/repository"
	pkgerrors "github.com/keshavmohta09/RosterPulse/pkg/errors"
)

// memDB 各 mock repo 共享的内存数据，便于跨表查询（角色、管理者、条目）
type memDB struct {
	seq         int
	users       map[string]*model.User
	roles       []*model.UserRole
	profiles    map[string]*model.Profile
	rosters     map[string]*model.Roster
	managers    []*model.RosterManager
	schedules   []*model.RosterUserSchedule
	attendances []*model.Attendance
	blacklist   map[string]time.Time

	// 最近一次 UpdateFields 写入的列，用于断言部分更新
	lastUpdate map[string]interface{}
	// 注入 BatchCreate 错误
	batchErr error
	// 注入 Attendance.Create 错误
	attendanceErr error
	// 注入 HasRole 错误，并统计角色查询次数
	roleErr     error
	roleLookups int
}

func newMemDB() *memDB {
	return &memDB{
		users:     make(map[string]*model.User),
		profiles:  make(map[string]*model.Profile),
		rosters:   make(map[string]*model.Roster),
		blacklist: make(map[string]time.Time),
	}
}

func (m *memDB) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func deleted(f model.LogFields) bool { return f.DateDeleted.Valid }

func (m *memDB) toRepository() *repository.Repository {
	return &repository.Repository{
		User:               &mockUserRepo{db: m},
		UserRole:           &mockUserRoleRepo{db: m},
		Profile:            &mockProfileRepo{db: m},
		Roster:             &mockRosterRepo{db: m},
		RosterManager:      &mockRosterManagerRepo{db: m},
		RosterUserSchedule: &mockScheduleRepo{db: m},
		Attendance:         &mockAttendanceRepo{db: m},
		TokenBlacklist:     &mockTokenBlacklistRepo{db: m},
	}
}

// ── 种子数据 ──

func (m *memDB) addUser(id, first, last string, roles ...model.Role) *model.User {
	u := &model.User{ID: id, Email: id + "@example.com", FirstName: first, IsActive: true}
	if last != "" {
		u.LastName = &last
	}
	m.users[id] = u
	for _, r := range roles {
		m.roles = append(m.roles, &model.UserRole{ID: m.nextID("role"), UserID: id, Role: r})
	}
	return u
}

func (m *memDB) addRoster(id, title string, managerIDs ...string) *model.Roster {
	r := &model.Roster{ID: id, Title: title, IsActive: true}
	m.rosters[id] = r
	for _, mid := range managerIDs {
		m.managers = append(m.managers, &model.RosterManager{ID: m.nextID("rm"), RosterID: id, ManagerID: mid})
	}
	return r
}

func (m *memDB) addSchedule(rosterID, userID string, day model.WorkingDay, shift model.Shift, start, end string) *model.RosterUserSchedule {
	s := &model.RosterUserSchedule{
		ID:         m.nextID("rus"),
		RosterID:   rosterID,
		UserID:     userID,
		WorkingDay: day,
		Shift:      shift,
		StartTime:  model.MustParseClock(start),
		EndTime:    model.MustParseClock(end),
	}
	m.schedules = append(m.schedules, s)
	return s
}

// liveSchedules 未删除的排班条目
func (m *memDB) liveSchedules() []*model.RosterUserSchedule {
	var out []*model.RosterUserSchedule
	for _, s := range m.schedules {
		if !deleted(s.LogFields) {
			out = append(out, s)
		}
	}
	return out
}

func (m *memDB) findSchedule(id string) *model.RosterUserSchedule {
	for _, s := range m.schedules {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (m *memDB) isManagerOf(rosterID, managerID string) bool {
	for _, rm := range m.managers {
		if rm.RosterID == rosterID && rm.ManagerID == managerID && !deleted(rm.LogFields) {
			return true
		}
	}
	return false
}

// withRelations 返回附带 Roster / User 的副本
func (m *memDB) withRelations(s *model.RosterUserSchedule) *model.RosterUserSchedule {
	cp := *s
	if r, ok := m.rosters[s.RosterID]; ok {
		rc := *r
		cp.Roster = &rc
	}
	if u, ok := m.users[s.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp
}

type scheduleKey struct {
	roster, user string
	day          model.WorkingDay
	shift        model.Shift
}

func keyOf(s *model.RosterUserSchedule) scheduleKey {
	return scheduleKey{s.RosterID, s.UserID, s.WorkingDay, s.Shift}
}

var errDuplicateSchedule = pkgerrors.NewIntegrity(
	"Roster user schedule with this Roster, User, Working day and Shift already exists.", nil)

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (r *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return pkgerrors.NewIntegrity("User with this Email already exists.", nil)
		}
	}
	if user.ID == "" {
		user.ID = r.db.nextID("user")
	}
	cp := *user
	r.db.users[user.ID] = &cp
	return nil
}

func (r *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.db.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	cp.Roles = nil
	for _, role := range r.db.roles {
		if role.UserID == id && !deleted(role.LogFields) {
			cp.Roles = append(cp.Roles, *role)
		}
	}
	cp.Profile = r.db.profiles[id]
	return &cp, nil
}

func (r *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.db.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var list []model.User
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			list = append(list, *u)
		}
	}
	return list, nil
}

func (r *mockUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	if u, ok := r.db.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

// ── Mock UserRoleRepository ──

type mockUserRoleRepo struct{ db *memDB }

func (r *mockUserRoleRepo) Create(_ context.Context, role *model.UserRole) error {
	for _, existing := range r.db.roles {
		if existing.UserID == role.UserID && existing.Role == role.Role && !deleted(existing.LogFields) {
			return pkgerrors.NewIntegrity("User role with this User and Role already exists.", nil)
		}
	}
	if role.ID == "" {
		role.ID = r.db.nextID("role")
	}
	cp := *role
	r.db.roles = append(r.db.roles, &cp)
	return nil
}

func (r *mockUserRoleRepo) HasRole(_ context.Context, userID string, role model.Role) (bool, error) {
	r.db.roleLookups++
	if r.db.roleErr != nil {
		return false, r.db.roleErr
	}
	for _, ur := range r.db.roles {
		if ur.UserID == userID && ur.Role == role && !deleted(ur.LogFields) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockUserRoleRepo) CountUsersWithRole(_ context.Context, userIDs []string, role model.Role) (int64, error) {
	seen := make(map[string]bool)
	for _, id := range userIDs {
		for _, ur := range r.db.roles {
			if ur.UserID == id && ur.Role == role && !deleted(ur.LogFields) {
				seen[id] = true
			}
		}
	}
	return int64(len(seen)), nil
}

func (r *mockUserRoleRepo) ListRoles(_ context.Context, userID string) ([]model.Role, error) {
	var roles []model.Role
	for _, ur := range r.db.roles {
		if ur.UserID == userID && !deleted(ur.LogFields) {
			roles = append(roles, ur.Role)
		}
	}
	return roles, nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct{ db *memDB }

func (r *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	p, ok := r.db.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *mockProfileRepo) Upsert(_ context.Context, profile *model.Profile) error {
	if existing, ok := r.db.profiles[profile.UserID]; ok {
		profile.ID = existing.ID
	} else if profile.ID == "" {
		profile.ID = r.db.nextID("profile")
	}
	cp := *profile
	r.db.profiles[profile.UserID] = &cp
	return nil
}

// ── Mock RosterRepository ──

type mockRosterRepo struct{ db *memDB }

func (r *mockRosterRepo) Create(_ context.Context, roster *model.Roster) error {
	if roster.ID == "" {
		roster.ID = r.db.nextID("roster")
	}
	cp := *roster
	r.db.rosters[roster.ID] = &cp
	return nil
}

func (r *mockRosterRepo) GetByID(_ context.Context, id string) (*model.Roster, error) {
	ro, ok := r.db.rosters[id]
	if !ok || deleted(ro.LogFields) {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *ro
	return &cp, nil
}

func (r *mockRosterRepo) ListByManager(_ context.Context, managerID string) ([]model.Roster, error) {
	var list []model.Roster
	for id, ro := range r.db.rosters {
		if deleted(ro.LogFields) || !r.db.isManagerOf(id, managerID) {
			continue
		}
		cp := *ro
		cp.Schedules = nil
		for _, s := range r.db.liveSchedules() {
			if s.RosterID == id {
				sc := *s
				if u, ok := r.db.users[s.UserID]; ok {
					uc := *u
					sc.User = &uc
				}
				cp.Schedules = append(cp.Schedules, sc)
			}
		}
		list = append(list, cp)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// ── Mock RosterManagerRepository ──

type mockRosterManagerRepo struct{ db *memDB }

func (r *mockRosterManagerRepo) Create(_ context.Context, rm *model.RosterManager) error {
	if r.db.isManagerOf(rm.RosterID, rm.ManagerID) {
		return pkgerrors.NewIntegrity("Roster manager with this Roster and Manager already exists.", nil)
	}
	if rm.ID == "" {
		rm.ID = r.db.nextID("rm")
	}
	cp := *rm
	r.db.managers = append(r.db.managers, &cp)
	return nil
}

func (r *mockRosterManagerRepo) ExistsForRoster(_ context.Context, rosterID string) (bool, error) {
	for _, rm := range r.db.managers {
		if rm.RosterID == rosterID && !deleted(rm.LogFields) {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockRosterManagerRepo) IsManagerOf(_ context.Context, rosterID, managerID string) (bool, error) {
	return r.db.isManagerOf(rosterID, managerID), nil
}

// ── Mock RosterUserScheduleRepository ──

type mockScheduleRepo struct{ db *memDB }

// BatchCreate 模拟部分唯一索引：与有效行或批内重复整体失败
func (r *mockScheduleRepo) BatchCreate(_ context.Context, schedules []model.RosterUserSchedule) error {
	if r.db.batchErr != nil {
		return r.db.batchErr
	}
	taken := make(map[scheduleKey]bool)
	for _, s := range r.db.liveSchedules() {
		taken[keyOf(s)] = true
	}
	for i := range schedules {
		if _, ok := r.db.rosters[schedules[i].RosterID]; !ok {
			return pkgerrors.NewIntegrity("Invalid roster", nil)
		}
		k := keyOf(&schedules[i])
		if taken[k] {
			return errDuplicateSchedule
		}
		taken[k] = true
	}
	for i := range schedules {
		schedules[i].ID = r.db.nextID("rus")
		cp := schedules[i]
		r.db.schedules = append(r.db.schedules, &cp)
	}
	return nil
}

func (r *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.RosterUserSchedule, error) {
	s := r.db.findSchedule(id)
	if s == nil || deleted(s.LogFields) {
		return nil, gorm.ErrRecordNotFound
	}
	return r.db.withRelations(s), nil
}

func (r *mockScheduleRepo) GetManagedByID(ctx context.Context, id, managerID string) (*model.RosterUserSchedule, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !r.db.isManagerOf(s.RosterID, managerID) {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *mockScheduleRepo) GetOwnedByID(ctx context.Context, id, userID string) (*model.RosterUserSchedule, error) {
	s, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *mockScheduleRepo) ListByUser(_ context.Context, userID string) ([]model.RosterUserSchedule, error) {
	var list []model.RosterUserSchedule
	for _, s := range r.db.liveSchedules() {
		if s.UserID == userID {
			list = append(list, *r.db.withRelations(s))
		}
	}
	return list, nil
}

func (r *mockScheduleRepo) ListByRoster(_ context.Context, rosterID string) ([]model.RosterUserSchedule, error) {
	var list []model.RosterUserSchedule
	for _, s := range r.db.liveSchedules() {
		if s.RosterID == rosterID {
			list = append(list, *r.db.withRelations(s))
		}
	}
	return list, nil
}

func (r *mockScheduleRepo) UpdateFields(_ context.Context, id string, fields map[string]interface{}) error {
	s := r.db.findSchedule(id)
	if s == nil || deleted(s.LogFields) {
		return gorm.ErrRecordNotFound
	}

	next := *s
	for col, v := range fields {
		switch col {
		case "roster_id":
			next.RosterID = v.(string)
		case "working_day":
			next.WorkingDay = v.(model.WorkingDay)
		case "shift":
			next.Shift = v.(model.Shift)
		case "start_time":
			next.StartTime = v.(model.Clock)
		case "end_time":
			next.EndTime = v.(model.Clock)
		case "updated_by_id":
			next.UpdatedByID = v.(*string)
		case "date_updated":
			next.DateUpdated = v.(time.Time)
		default:
			return fmt.Errorf("unexpected column %q", col)
		}
	}

	for _, other := range r.db.liveSchedules() {
		if other.ID != id && keyOf(other) == keyOf(&next) {
			return errDuplicateSchedule
		}
	}

	*s = next
	r.db.lastUpdate = fields
	return nil
}

func (r *mockScheduleRepo) SoftDelete(_ context.Context, id string, updatedBy *string, at time.Time) error {
	s := r.db.findSchedule(id)
	if s == nil || deleted(s.LogFields) {
		return gorm.ErrRecordNotFound
	}
	s.DateDeleted = gorm.DeletedAt{Time: at, Valid: true}
	s.UpdatedByID = updatedBy
	return nil
}

func (r *mockScheduleRepo) UnscopedGetByID(_ context.Context, id string) (*model.RosterUserSchedule, error) {
	s := r.db.findSchedule(id)
	if s == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.db.withRelations(s), nil
}

// ── Mock AttendanceRepository ──

type mockAttendanceRepo struct{ db *memDB }

func (r *mockAttendanceRepo) Create(_ context.Context, a *model.Attendance) error {
	if r.db.attendanceErr != nil {
		return r.db.attendanceErr
	}
	if r.db.findSchedule(a.RosterUserScheduleID) == nil {
		return pkgerrors.NewIntegrity("Invalid roster_user_schedule", nil)
	}
	if a.ID == "" {
		a.ID = r.db.nextID("att")
	}
	cp := *a
	cp.RosterUserSchedule = nil
	r.db.attendances = append(r.db.attendances, &cp)
	return nil
}

func (r *mockAttendanceRepo) ListByUser(_ context.Context, userID string) ([]model.Attendance, error) {
	var list []model.Attendance
	for _, a := range r.db.attendances {
		s := r.db.findSchedule(a.RosterUserScheduleID)
		if s == nil || s.UserID != userID {
			continue
		}
		cp := *a
		cp.RosterUserSchedule = r.db.withRelations(s)
		list = append(list, cp)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].AttendanceTime.After(list[j].AttendanceTime)
	})
	return list, nil
}

func (r *mockAttendanceRepo) CountBySchedule(_ context.Context, scheduleID string) (int64, error) {
	var n int64
	for _, a := range r.db.attendances {
		if a.RosterUserScheduleID == scheduleID {
			n++
		}
	}
	return n, nil
}

// ── Mock TokenBlacklistRepository ──

type mockTokenBlacklistRepo struct{ db *memDB }

func (r *mockTokenBlacklistRepo) Add(_ context.Context, token *model.BlacklistedToken) (bool, error) {
	if _, ok := r.db.blacklist[token.JTI]; ok {
		return false, nil
	}
	r.db.blacklist[token.JTI] = token.ExpiresAt
	return true, nil
}

func (r *mockTokenBlacklistRepo) Exists(_ context.Context, jti string) (bool, error) {
	exp, ok := r.db.blacklist[jti]
	return ok && exp.After(time.Now()), nil
}

func (r *mockTokenBlacklistRepo) PurgeExpired(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for jti, exp := range r.db.blacklist {
		if !exp.After(before) {
			delete(r.db.blacklist, jti)
			n++
		}
	}
	return n, nil
}

// ── Mock Storage ──

type mockStorage struct {
	files     map[string][]byte
	saveErr   error
	deleteErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string][]byte)}
}

func (s *mockStorage) Save(_ context.Context, key string, data []byte) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.files[key] = data
	return key, nil
}

func (s *mockStorage) Delete(_ context.Context, key string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	delete(s.files, key)
	return nil
}

package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/keylock"
	"sehatku-paylater/internal/pkg/password"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func init() {
	password.Cost = bcrypt.MinCost
}

// -- In-memory store shared by the fake repositories --

type fakeStore struct {
	mu         sync.Mutex
	nextID     uint
	users      map[uint]*models.User
	tokens     map[uint]*models.RefreshToken
	hospitals  map[uint]*models.Hospital
	diseases   map[uint]*models.Disease
	payLaters  map[uint]*models.PayLater
	treatments map[uint]*models.Treatment
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      make(map[uint]*models.User),
		tokens:     make(map[uint]*models.RefreshToken),
		hospitals:  make(map[uint]*models.Hospital),
		diseases:   make(map[uint]*models.Disease),
		payLaters:  make(map[uint]*models.PayLater),
		treatments: make(map[uint]*models.Treatment),
	}
}

func (s *fakeStore) id() uint {
	s.nextID++
	return s.nextID
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// -- Users --

type fakeUserRepo struct{ s *fakeStore }

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	r.s.users[u.ID] = &stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[u.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.FullName = u.FullName
	stored.Email = u.Email
	stored.Phone = u.Phone
	stored.Province = u.Province
	stored.City = u.City
	stored.District = u.District
	stored.PostalCode = u.PostalCode
	stored.NIK = u.NIK
	stored.Salary = u.Salary
	return nil
}

func (r *fakeUserRepo) UpdateBPJS(_ context.Context, id uint, number *string, last *time.Time, role domain.Role) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.BPJSNumber = number
	stored.LastPaymentDate = last
	stored.Role = role
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uint, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Password = hash
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]*models.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.User
	for _, u := range r.s.users {
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *fakeUserRepo) ListWithBPJS(_ context.Context, afterID uint, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.User
	for _, u := range r.s.users {
		if u.ID > afterID && u.BPJSNumber != nil && *u.BPJSNumber != "" {
			cp := *u
			all = append(all, &cp)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, 0, limit), nil
}

func (r *fakeUserRepo) ExistsByEmail(_ context.Context, email string, excludeID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) ExistsByPhone(_ context.Context, phone string, excludeID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Phone == phone && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// -- Refresh tokens --

type fakeTokenRepo struct{ s *fakeStore }

func (r *fakeTokenRepo) Create(_ context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	stored := *t
	r.s.tokens[t.ID] = &stored
	return nil
}

func (r *fakeTokenRepo) FindByHash(_ context.Context, hash string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.TokenHash == hash {
			cp := *t
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeTokenRepo) Rotate(_ context.Context, currentID uint, next *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tokens[currentID]
	if !ok || t.RevokedAt != nil {
		return repositories.ErrSessionRotated
	}
	now := time.Now()
	t.RevokedAt = &now
	next.ID = r.s.id()
	stored := *next
	r.s.tokens[next.ID] = &stored
	return nil
}

func (r *fakeTokenRepo) RevokeByHash(_ context.Context, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tokens {
		if t.TokenHash == hash && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeTokenRepo) RevokeAllForUser(_ context.Context, userID uint) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, t := range r.s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			n++
		}
	}
	return n, nil
}

func (r *fakeTokenRepo) Purge(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, t := range r.s.tokens {
		if t.ExpiresAt.Before(cutoff) || (t.RevokedAt != nil && t.RevokedAt.Before(cutoff)) {
			delete(r.s.tokens, id)
			n++
		}
	}
	return n, nil
}

// -- Hospitals --

type fakeHospitalRepo struct{ s *fakeStore }

func (r *fakeHospitalRepo) Create(_ context.Context, h *models.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = r.s.id()
	stored := *h
	r.s.hospitals[h.ID] = &stored
	return nil
}

func (r *fakeHospitalRepo) GetByID(_ context.Context, id uint) (*models.Hospital, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h, ok := r.s.hospitals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *h
	return &cp, nil
}

func (r *fakeHospitalRepo) Update(_ context.Context, h *models.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *h
	r.s.hospitals[h.ID] = &stored
	return nil
}

func (r *fakeHospitalRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.hospitals, id)
	return nil
}

func (r *fakeHospitalRepo) List(_ context.Context, offset, limit int) ([]*models.Hospital, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Hospital
	for _, h := range r.s.hospitals {
		cp := *h
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *fakeHospitalRepo) ExistsByPhone(_ context.Context, phone string, excludeID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, h := range r.s.hospitals {
		if h.Phone == phone && h.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

// -- Diseases --

type fakeDiseaseRepo struct{ s *fakeStore }

func (r *fakeDiseaseRepo) Create(_ context.Context, d *models.Disease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d.ID = r.s.id()
	stored := *d
	stored.Hospital = nil
	r.s.diseases[d.ID] = &stored
	return nil
}

func (r *fakeDiseaseRepo) load(d *models.Disease) *models.Disease {
	cp := *d
	if h, ok := r.s.hospitals[d.HospitalID]; ok {
		hc := *h
		cp.Hospital = &hc
	}
	return &cp
}

func (r *fakeDiseaseRepo) GetByID(_ context.Context, id uint) (*models.Disease, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.diseases[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(d), nil
}

func (r *fakeDiseaseRepo) Update(_ context.Context, d *models.Disease) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *d
	stored.Hospital = nil
	r.s.diseases[d.ID] = &stored
	return nil
}

func (r *fakeDiseaseRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.diseases, id)
	return nil
}

func (r *fakeDiseaseRepo) List(_ context.Context, offset, limit int) ([]*models.Disease, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Disease
	for _, d := range r.s.diseases {
		all = append(all, r.load(d))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

// -- PayLaters --

type fakePayLaterRepo struct {
	s *fakeStore
	// creates counts successful Create calls
	creates int
}

func (r *fakePayLaterRepo) Create(_ context.Context, p *models.PayLater) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p.ID = r.s.id()
	p.CreatedAt = time.Now()
	stored := *p
	stored.User = nil
	r.s.payLaters[p.ID] = &stored
	r.creates++
	return nil
}

func (r *fakePayLaterRepo) load(p *models.PayLater) *models.PayLater {
	cp := *p
	if u, ok := r.s.users[p.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	return &cp
}

func (r *fakePayLaterRepo) GetByID(_ context.Context, id uint) (*models.PayLater, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payLaters[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(p), nil
}

func (r *fakePayLaterRepo) Update(_ context.Context, p *models.PayLater) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *p
	stored.User = nil
	r.s.payLaters[p.ID] = &stored
	return nil
}

func (r *fakePayLaterRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.payLaters, id)
	return nil
}

func (r *fakePayLaterRepo) List(_ context.Context, offset, limit int) ([]*models.PayLater, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.PayLater
	for _, p := range r.s.payLaters {
		all = append(all, r.load(p))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), int64(len(all)), nil
}

func (r *fakePayLaterRepo) HasActiveByUserID(_ context.Context, userID uint, excludeID uint) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payLaters {
		if p.UserID == userID && p.ID != excludeID && p.Status.IsActive() {
			return true, nil
		}
	}
	return false, nil
}

// -- Dashboard --

type fakeDashboardRepo struct{ s *fakeStore }

func (r *fakeDashboardRepo) CountUsersByRole(_ context.Context) ([]repositories.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, u := range r.s.users {
		counts[string(u.Role)]++
	}
	return totals(counts, nil), nil
}

func (r *fakeDashboardRepo) PayLaterTotalsByStatus(_ context.Context) ([]repositories.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	amounts := map[string]float64{}
	for _, p := range r.s.payLaters {
		counts[string(p.Status)]++
		amounts[string(p.Status)] += p.Amount
	}
	return totals(counts, amounts), nil
}

func (r *fakeDashboardRepo) CountTreatmentsByStatus(_ context.Context) ([]repositories.StatusTotal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := map[string]int64{}
	for _, t := range r.s.treatments {
		counts[string(t.Status)]++
	}
	return totals(counts, nil), nil
}

func (r *fakeDashboardRepo) RecentPayLaters(ctx context.Context, limit int) ([]*models.PayLater, error) {
	items, _, err := (&fakePayLaterRepo{s: r.s}).List(ctx, 0, limit)
	return items, err
}

func totals(counts map[string]int64, amounts map[string]float64) []repositories.StatusTotal {
	rows := make([]repositories.StatusTotal, 0, len(counts))
	for key, count := range counts {
		rows = append(rows, repositories.StatusTotal{Key: key, Count: count, Amount: amounts[key]})
	}
	return rows
}

// -- Treatments --

type fakeTreatmentRepo struct{ s *fakeStore }

func (r *fakeTreatmentRepo) Create(_ context.Context, t *models.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	stored := *t
	stored.User, stored.Disease, stored.Hospital, stored.PayLater = nil, nil, nil, nil
	r.s.treatments[t.ID] = &stored
	return nil
}

func (r *fakeTreatmentRepo) load(t *models.Treatment) *models.Treatment {
	cp := *t
	if u, ok := r.s.users[t.UserID]; ok {
		uc := *u
		cp.User = &uc
	}
	if d, ok := r.s.diseases[t.DiseaseID]; ok {
		dc := *d
		cp.Disease = &dc
	}
	if h, ok := r.s.hospitals[t.HospitalID]; ok {
		hc := *h
		cp.Hospital = &hc
	}
	if t.PayLaterID != nil {
		if p, ok := r.s.payLaters[*t.PayLaterID]; ok {
			pc := *p
			cp.PayLater = &pc
		}
	}
	return &cp
}

func (r *fakeTreatmentRepo) GetByID(_ context.Context, id uint) (*models.Treatment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.treatments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.load(t), nil
}

func (r *fakeTreatmentRepo) Update(_ context.Context, t *models.Treatment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := *t
	stored.User, stored.Disease, stored.Hospital, stored.PayLater = nil, nil, nil, nil
	r.s.treatments[t.ID] = &stored
	return nil
}

func (r *fakeTreatmentRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.treatments, id)
	return nil
}

func (r *fakeTreatmentRepo) List(_ context.Context, offset, limit int) ([]*models.Treatment, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []*models.Treatment
	for _, t := range r.s.treatments {
		all = append(all, r.load(t))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].AppointmentDate.After(all[j].AppointmentDate) })
	return page(all, offset, limit), int64(len(all)), nil
}

// -- Fixture --

// fixture wires every service against one in-memory store
type fixture struct {
	store      *fakeStore
	users      *fakeUserRepo
	tokens     *fakeTokenRepo
	hospitals  *fakeHospitalRepo
	diseases   *fakeDiseaseRepo
	payLaters  *fakePayLaterRepo
	treatments *fakeTreatmentRepo
	locker     keylock.Locker
	bpjs       *BPJSService
	payLater   *PayLaterService
	treatment  *TreatmentService
	user       *UserService
	hospital   *HospitalService
	disease    *DiseaseService
	dashboard  *DashboardService
}

// fixedToday is the reference date used by every fixture clock
var fixedToday = time.Date(2024, time.June, 15, 9, 0, 0, 0, time.UTC)

func newFixture() *fixture {
	store := newFakeStore()
	f := &fixture{
		store:      store,
		users:      &fakeUserRepo{s: store},
		tokens:     &fakeTokenRepo{s: store},
		hospitals:  &fakeHospitalRepo{s: store},
		diseases:   &fakeDiseaseRepo{s: store},
		payLaters:  &fakePayLaterRepo{s: store},
		treatments: &fakeTreatmentRepo{s: store},
		locker:     keylock.NewLocal(),
	}

	clock := func() time.Time { return fixedToday }

	f.bpjs = NewBPJSService(f.users, f.locker)
	f.bpjs.now = clock
	f.payLater = NewPayLaterService(f.payLaters, f.users, f.locker)
	f.payLater.now = clock
	f.treatment = NewTreatmentService(f.treatments, f.users, f.diseases, f.hospitals, f.payLaters, f.locker)
	f.treatment.now = clock
	f.user = NewUserService(f.users)
	f.hospital = NewHospitalService(f.hospitals)
	f.disease = NewDiseaseService(f.diseases, f.hospitals)
	f.dashboard = NewDashboardService(&fakeDashboardRepo{s: store})
	return f
}

func (f *fixture) addUser(role domain.Role, salary *float64) *models.User {
	n := f.store.nextID + 1
	u := &models.User{
		FullName: "Budi Santoso",
		Email:    fmt.Sprintf("user%d@example.com", n),
		Phone:    fmt.Sprintf("0812%08d", n),
		Role:     role,
		Salary:   salary,
	}
	if role == domain.RoleBPJS || role == domain.RoleNonActiveBPJS {
		num := "0001234567890"
		u.BPJSNumber = &num
	}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) addHospital(multiplier *float64) *models.Hospital {
	h := &models.Hospital{
		Name:            "RS Sehat Sentosa",
		Type:            "General",
		Phone:           fmt.Sprintf("021555%04d", f.store.nextID+1),
		PriceMultiplier: multiplier,
		OpenTime:        "08:00",
		CloseTime:       "20:00",
	}
	if err := f.hospitals.Create(context.Background(), h); err != nil {
		panic(err)
	}
	return h
}

func (f *fixture) addDisease(hospitalID uint, cost float64) *models.Disease {
	d := &models.Disease{
		Name:       "Demam Berdarah",
		Type:       "Infection",
		Cost:       cost,
		HospitalID: hospitalID,
	}
	if err := f.diseases.Create(context.Background(), d); err != nil {
		panic(err)
	}
	return d
}

func (f *fixture) addPayLater(userID uint, amount float64, tenor int, status domain.PayLaterStatus) *models.PayLater {
	p := &models.PayLater{
		UserID:   userID,
		Amount:   amount,
		Tenor:    tenor,
		Interest: domain.CalculateInterest(amount, tenor),
		Status:   status,
	}
	if err := f.payLaters.Create(context.Background(), p); err != nil {
		panic(err)
	}
	return p
}

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }

func timePtr(v time.Time) *time.Time { return &v }

package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/domain"
)

func TestEstimateCost_WithPayLater(t *testing.T) {
	f := newFixture()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	hospital := f.addHospital(floatPtr(1.5))
	disease := f.addDisease(hospital.ID, 1_000_000)
	p := f.addPayLater(user.ID, 3_000_000, 3, domain.PayLaterApproved)
	if p.Interest != 0.05 {
		t.Fatalf("expected base interest 0.05, got %v", p.Interest)
	}

	got, err := f.treatment.EstimateCost(context.Background(), &EstimateInput{
		DiseaseID:  disease.ID,
		HospitalID: hospital.ID,
		PayLaterID: uintPtr(p.ID),
	})
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}

	if got.CostEstimate.BaseCost != 1_000_000 {
		t.Errorf("expected base cost 1000000, got %v", got.CostEstimate.BaseCost)
	}
	if got.CostEstimate.TotalCost != 1_500_000 {
		t.Errorf("expected total cost 1500000, got %v", got.CostEstimate.TotalCost)
	}
	if got.CostEstimate.Currency != "IDR" {
		t.Errorf("expected IDR, got %s", got.CostEstimate.Currency)
	}
	if got.Hospital.PriceMultiplier != 1.5 {
		t.Errorf("expected multiplier 1.5, got %v", got.Hospital.PriceMultiplier)
	}
	if got.PayLater == nil {
		t.Fatal("expected paylater section")
	}
	if got.PayLater.TotalPayment != 1_575_000 {
		t.Errorf("expected total payment 1575000, got %v", got.PayLater.TotalPayment)
	}
	if got.PayLater.MonthlyPayment != 525_000 {
		t.Errorf("expected monthly payment 525000, got %v", got.PayLater.MonthlyPayment)
	}
	if got.PayLater.PayLaterID != p.ID || got.PayLater.Tenor != 3 {
		t.Errorf("unexpected paylater section %+v", got.PayLater)
	}
}

func TestEstimateCost_DefaultMultiplier(t *testing.T) {
	f := newFixture()
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	got, err := f.treatment.EstimateCost(context.Background(), &EstimateInput{
		DiseaseID:  disease.ID,
		HospitalID: hospital.ID,
	})
	if err != nil {
		t.Fatalf("EstimateCost: %v", err)
	}
	if got.CostEstimate.TotalCost != 750_000 {
		t.Errorf("expected total cost 750000, got %v", got.CostEstimate.TotalCost)
	}
	if got.Hospital.PriceMultiplier != 1 {
		t.Errorf("expected multiplier 1, got %v", got.Hospital.PriceMultiplier)
	}
	if got.PayLater != nil {
		t.Error("expected no paylater section")
	}
}

func TestEstimateCost_Errors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)
	pending := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	tests := []struct {
		name    string
		input   EstimateInput
		wantErr error
	}{
		{"missing disease", EstimateInput{DiseaseID: 9999, HospitalID: hospital.ID}, ErrDiseaseNotFound},
		{"missing hospital", EstimateInput{DiseaseID: disease.ID, HospitalID: 9999}, ErrHospitalNotFound},
		{"missing paylater", EstimateInput{DiseaseID: disease.ID, HospitalID: hospital.ID, PayLaterID: uintPtr(9999)}, ErrPayLaterNotFound},
		{"pending paylater", EstimateInput{DiseaseID: disease.ID, HospitalID: hospital.ID, PayLaterID: uintPtr(pending.ID)}, ErrPayLaterNotApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			if _, err := f.treatment.EstimateCost(ctx, &input); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestTreatmentCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	other := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)
	approved := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterApproved)
	pending := f.addPayLater(other.ID, 1_000_000, 6, domain.PayLaterPending)
	othersApproved := f.addPayLater(f.addUser(domain.RoleNonActiveBPJS, floatPtr(1_000_000)).ID, 1_000_000, 6, domain.PayLaterApproved)

	base := CreateTreatmentInput{
		UserID:          user.ID,
		DiseaseID:       disease.ID,
		HospitalID:      hospital.ID,
		AppointmentDate: "2024-07-01",
	}

	tests := []struct {
		name    string
		mutate  func(in *CreateTreatmentInput)
		wantErr error
		wantMsg string
	}{
		{"missing user", func(in *CreateTreatmentInput) { in.UserID = 9999 }, ErrUserNotFound, ""},
		{"missing disease", func(in *CreateTreatmentInput) { in.DiseaseID = 9999 }, ErrDiseaseNotFound, ""},
		{"missing hospital", func(in *CreateTreatmentInput) { in.HospitalID = 9999 }, ErrHospitalNotFound, ""},
		{"missing paylater", func(in *CreateTreatmentInput) { in.PayLaterID = uintPtr(9999) }, ErrPayLaterNotFound, ""},
		{"paylater not approved", func(in *CreateTreatmentInput) { in.PayLaterID = uintPtr(pending.ID) }, ErrPayLaterNotApproved, "PayLater must be approved to use"},
		{"paylater of another user", func(in *CreateTreatmentInput) { in.PayLaterID = uintPtr(othersApproved.ID) }, ErrPayLaterOwnerMismatch, "PayLater does not belong to this user"},
		{"bad date", func(in *CreateTreatmentInput) { in.AppointmentDate = "01/07/2024" }, domain.ErrInvalidRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base
			tt.mutate(&input)
			_, err := f.treatment.Create(ctx, &input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}

	input := base
	input.PayLaterID = uintPtr(approved.ID)
	resp, err := f.treatment.Create(ctx, &input)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Status != domain.TreatmentPending {
		t.Errorf("expected PENDING, got %s", resp.Status)
	}
	if resp.PayLater == nil || resp.PayLater.ID != approved.ID {
		t.Errorf("expected paylater %d attached, got %+v", approved.ID, resp.PayLater)
	}
	if resp.AppointmentDate.Format(domain.DateLayout) != "2024-07-01" {
		t.Errorf("unexpected appointment date %v", resp.AppointmentDate)
	}
}

func TestTreatmentApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleBPJS, nil)
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	created, err := f.treatment.Create(ctx, &CreateTreatmentInput{
		UserID:          user.ID,
		DiseaseID:       disease.ID,
		HospitalID:      hospital.ID,
		AppointmentDate: "2024-07-01T10:00:00Z",
		Notes:           strPtr("Bring referral letter"),
	})
	if err != nil {
		t.Fatal(err)
	}

	resp, err := f.treatment.Approve(ctx, created.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if resp.Status != domain.TreatmentApproved {
		t.Errorf("expected APPROVED, got %s", resp.Status)
	}
	want := "Bring referral letter\nApproved at: 2024-06-15T09:00:00Z"
	if resp.Notes == nil || *resp.Notes != want {
		t.Errorf("expected notes %q, got %v", want, resp.Notes)
	}

	_, err = f.treatment.Approve(ctx, created.ID)
	if err == nil || err.Error() != "Cannot approve treatment with status APPROVED" {
		t.Fatalf("expected second approve to fail, got %v", err)
	}

	if _, err := f.treatment.Approve(ctx, 9999); !errors.Is(err, ErrTreatmentNotFound) {
		t.Fatalf("expected ErrTreatmentNotFound, got %v", err)
	}
}

func TestTreatmentApprove_EmptyNotes(t *testing.T) {
	got := appendApprovalNote(nil, fixedToday)
	if got != "Approved at: 2024-06-15T09:00:00Z" {
		t.Fatalf("unexpected note %q", got)
	}
	if strings.HasPrefix(appendApprovalNote(strPtr("  "), fixedToday), "\n") {
		t.Fatal("blank notes should not leave a leading newline")
	}
}

func TestTreatmentUpdate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleBPJS, nil)
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	created, err := f.treatment.Create(ctx, &CreateTreatmentInput{
		UserID: user.ID, DiseaseID: disease.ID, HospitalID: hospital.ID, AppointmentDate: "2024-07-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{Status: strPtr("UNKNOWN")}); !errors.Is(err, ErrTreatmentInvalidStatus) {
		t.Fatalf("expected ErrTreatmentInvalidStatus, got %v", err)
	}
	if _, err := f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{Status: strPtr("APPROVED")}); !errors.Is(err, ErrTreatmentUseApprove) {
		t.Fatalf("expected ErrTreatmentUseApprove, got %v", err)
	}
	if _, err := f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{Status: strPtr("COMPLETED")}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("PENDING -> COMPLETED should fail, got %v", err)
	}

	resp, err := f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{AppointmentDate: strPtr("2024-08-10")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.AppointmentDate.Format(domain.DateLayout) != "2024-08-10" {
		t.Errorf("expected rescheduled date, got %v", resp.AppointmentDate)
	}

	if _, err := f.treatment.Approve(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	for _, next := range []string{"ONGOING", "COMPLETED"} {
		resp, err = f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{Status: strPtr(next)})
		if err != nil {
			t.Fatalf("move to %s: %v", next, err)
		}
		if string(resp.Status) != next {
			t.Fatalf("expected %s, got %s", next, resp.Status)
		}
	}

	if _, err := f.treatment.Update(ctx, created.ID, &UpdateTreatmentInput{Status: strPtr("CANCELLED")}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("COMPLETED is terminal, got %v", err)
	}
	if err := f.treatment.Delete(ctx, created.ID); !errors.Is(err, ErrTreatmentUndeletable) {
		t.Fatalf("expected ErrTreatmentUndeletable, got %v", err)
	}
}

// hookedTreatmentRepo runs onFirstGet once, inside the first GetByID after the row is read
type hookedTreatmentRepo struct {
	*fakeTreatmentRepo
	once       sync.Once
	onFirstGet func()
}

func (r *hookedTreatmentRepo) GetByID(ctx context.Context, id uint) (*models.Treatment, error) {
	t, err := r.fakeTreatmentRepo.GetByID(ctx, id)
	if r.onFirstGet != nil {
		r.once.Do(r.onFirstGet)
	}
	return t, err
}

func TestTreatmentUpdate_ConcurrentApproveKeepsBothWrites(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleBPJS, nil)
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	created, err := f.treatment.Create(ctx, &CreateTreatmentInput{
		UserID: user.ID, DiseaseID: disease.ID, HospitalID: hospital.ID, AppointmentDate: "2024-07-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	repo := &hookedTreatmentRepo{fakeTreatmentRepo: f.treatments}
	svc := NewTreatmentService(repo, f.users, f.diseases, f.hospitals, f.payLaters, f.locker)
	svc.now = func() time.Time { return fixedToday }

	var wg sync.WaitGroup
	var approveErr error
	repo.onFirstGet = func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, approveErr = svc.Approve(ctx, created.ID)
		}()
		// give Approve time to finish if nothing holds it back
		time.Sleep(20 * time.Millisecond)
	}

	if _, err := svc.Update(ctx, created.ID, &UpdateTreatmentInput{Notes: strPtr("bring lab results")}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	wg.Wait()
	if approveErr != nil {
		t.Fatalf("Approve: %v", approveErr)
	}

	got, err := f.treatment.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != domain.TreatmentApproved {
		t.Fatalf("expected APPROVED to survive the notes update, got %s", got.Status)
	}
	want := "bring lab results\nApproved at: 2024-06-15T09:00:00Z"
	if got.Notes == nil || *got.Notes != want {
		t.Fatalf("expected notes %q, got %v", want, got.Notes)
	}
}

func TestTreatmentDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleBPJS, nil)
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	created, err := f.treatment.Create(ctx, &CreateTreatmentInput{
		UserID: user.ID, DiseaseID: disease.ID, HospitalID: hospital.ID, AppointmentDate: "2024-07-01",
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := f.treatment.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.treatment.GetByID(ctx, created.ID); !errors.Is(err, ErrTreatmentNotFound) {
		t.Fatalf("expected ErrTreatmentNotFound, got %v", err)
	}
}

func TestTreatmentList_OrderedByAppointment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleBPJS, nil)
	hospital := f.addHospital(nil)
	disease := f.addDisease(hospital.ID, 750_000)

	for _, date := range []string{"2024-07-01", "2024-09-01", "2024-08-01"} {
		if _, err := f.treatment.Create(ctx, &CreateTreatmentInput{
			UserID: user.ID, DiseaseID: disease.ID, HospitalID: hospital.ID, AppointmentDate: date,
		}); err != nil {
			t.Fatal(err)
		}
	}

	resp, err := f.treatment.List(ctx, &ListInput{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Meta.Total != 3 || resp.Meta.TotalPages != 2 || !resp.Meta.HasNextPage {
		t.Fatalf("unexpected meta %+v", resp.Meta)
	}
	items := resp.Data
	if len(items) != 2 || items[0].AppointmentDate.Format(domain.DateLayout) != "2024-09-01" {
		t.Fatalf("expected latest appointment first, got %+v", items)
	}
}

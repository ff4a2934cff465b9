package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sehatku-paylater/internal/core/domain"
)

func TestPayLaterCreate_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	nonBPJS := f.addUser(domain.RoleNonBPJS, floatPtr(4_500_000))
	active := f.addUser(domain.RoleBPJS, floatPtr(4_500_000))
	admin := f.addUser(domain.RoleHospitalAdmin, floatPtr(4_500_000))
	noSalary := f.addUser(domain.RoleNonActiveBPJS, nil)
	zeroSalary := f.addUser(domain.RoleNonActiveBPJS, floatPtr(0))
	eligible := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	tests := []struct {
		name    string
		input   CreatePayLaterInput
		wantErr error
		wantMsg string
	}{
		{"missing user", CreatePayLaterInput{UserID: 9999, Amount: 1_000_000, Tenor: 6}, ErrUserNotFound, "User not found"},
		{"no bpjs number", CreatePayLaterInput{UserID: nonBPJS.ID, Amount: 1_000_000, Tenor: 6}, ErrPayLaterNeedsBPJS, "User must have BPJS number to create paylater"},
		{"bpjs still active", CreatePayLaterInput{UserID: active.ID, Amount: 1_000_000, Tenor: 6}, ErrPayLaterBPJSActive, "Cannot create paylater while BPJS is active"},
		{"hospital admin", CreatePayLaterInput{UserID: admin.ID, Amount: 1_000_000, Tenor: 6}, ErrPayLaterNotEligible, ""},
		{"no salary", CreatePayLaterInput{UserID: noSalary.ID, Amount: 1_000_000, Tenor: 6}, ErrPayLaterNoSalary, "User must have valid salary to create paylater"},
		{"zero salary", CreatePayLaterInput{UserID: zeroSalary.ID, Amount: 1_000_000, Tenor: 6}, ErrPayLaterNoSalary, ""},
		{"over salary cap", CreatePayLaterInput{UserID: eligible.ID, Amount: 13_500_001, Tenor: 6}, nil, "Maximum paylater amount is 13500000"},
		{"tenor too long", CreatePayLaterInput{UserID: eligible.ID, Amount: 1_000_000, Tenor: 37}, ErrPayLaterInvalidTenor, ""},
		{"tenor zero", CreatePayLaterInput{UserID: eligible.ID, Amount: 1_000_000, Tenor: 0}, ErrPayLaterInvalidTenor, ""},
		{"non-positive amount", CreatePayLaterInput{UserID: eligible.ID, Amount: 0, Tenor: 6}, ErrPayLaterInvalidAmount, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.input
			_, err := f.payLater.Create(ctx, &input)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Fatalf("expected message %q, got %q", tt.wantMsg, err.Error())
			}
		})
	}

	if f.payLaters.creates != 0 {
		t.Fatalf("expected no paylater stored, got %d", f.payLaters.creates)
	}
}

func TestPayLaterCreate_Success(t *testing.T) {
	f := newFixture()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	resp, err := f.payLater.Create(context.Background(), &CreatePayLaterInput{
		UserID: user.ID,
		Amount: 6_000_000,
		Tenor:  18,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if resp.Status != domain.PayLaterPending {
		t.Errorf("expected PENDING, got %s", resp.Status)
	}
	if resp.Interest != 0.08 {
		t.Errorf("expected interest 0.08, got %v", resp.Interest)
	}
	if resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("expected owner projection for user %d, got %+v", user.ID, resp.User)
	}
	if resp.ApprovedAt != nil {
		t.Error("expected approvedAt to be empty")
	}
}

func TestPayLaterCreate_AtCapAllowed(t *testing.T) {
	f := newFixture()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	if _, err := f.payLater.Create(context.Background(), &CreatePayLaterInput{
		UserID: user.ID, Amount: 13_500_000, Tenor: 36,
	}); err != nil {
		t.Fatalf("amount equal to the cap should pass: %v", err)
	}
}

func TestPayLaterCreate_OneActivePerUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	for _, status := range []domain.PayLaterStatus{domain.PayLaterPending, domain.PayLaterApproved} {
		existing := f.addPayLater(user.ID, 1_000_000, 6, status)

		_, err := f.payLater.Create(ctx, &CreatePayLaterInput{UserID: user.ID, Amount: 1_000_000, Tenor: 6})
		if !errors.Is(err, ErrPayLaterActiveExists) {
			t.Fatalf("status %s: expected ErrPayLaterActiveExists, got %v", status, err)
		}

		if err := f.payLaters.Delete(ctx, existing.ID); err != nil {
			t.Fatal(err)
		}
	}

	// closed paylaters do not block
	f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPaid)
	f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterRejected)
	if _, err := f.payLater.Create(ctx, &CreatePayLaterInput{UserID: user.ID, Amount: 1_000_000, Tenor: 6}); err != nil {
		t.Fatalf("expected create after closed paylaters, got %v", err)
	}
}

func TestPayLaterCreate_ConcurrentRequestsYieldOne(t *testing.T) {
	f := newFixture()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.payLater.Create(context.Background(), &CreatePayLaterInput{
				UserID: user.ID, Amount: 2_000_000, Tenor: 12,
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrPayLaterActiveExists):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one paylater, got %d", succeeded)
	}
	if f.payLaters.creates != 1 {
		t.Fatalf("expected one stored paylater, got %d", f.payLaters.creates)
	}
}

func TestPayLaterApprove(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	p := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	resp, err := f.payLater.Approve(ctx, p.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if resp.Status != domain.PayLaterApproved {
		t.Errorf("expected APPROVED, got %s", resp.Status)
	}
	if resp.ApprovedAt == nil || !resp.ApprovedAt.Equal(fixedToday) {
		t.Errorf("expected approvedAt %v, got %v", fixedToday, resp.ApprovedAt)
	}

	_, err = f.payLater.Approve(ctx, p.ID)
	if err == nil || err.Error() != "Cannot approve PayLater with status APPROVED" {
		t.Fatalf("expected second approve to fail, got %v", err)
	}

	if _, err := f.payLater.Approve(ctx, 9999); !errors.Is(err, ErrPayLaterNotFound) {
		t.Fatalf("expected ErrPayLaterNotFound, got %v", err)
	}
}

func TestPayLaterApprove_OwnerNoLongerEligible(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	p := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	// BPJS paid again after the request was opened
	if _, err := f.bpjs.UpdateStatus(ctx, user.ID, &UpdateBPJSInput{
		BPJSNumber:      strPtr("0001234567890"),
		LastPaymentDate: timePtr(fixedToday.AddDate(0, -1, 0)),
	}); err != nil {
		t.Fatal(err)
	}

	_, err := f.payLater.Approve(ctx, p.ID)
	if !errors.Is(err, ErrPayLaterNotEligible) {
		t.Fatalf("expected ErrPayLaterNotEligible, got %v", err)
	}

	stored, _ := f.payLaters.GetByID(ctx, p.ID)
	if stored.Status != domain.PayLaterPending {
		t.Fatalf("expected status untouched, got %s", stored.Status)
	}
}

func TestPayLaterRejectAndMarkPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	pending := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)
	if _, err := f.payLater.MarkPaid(ctx, pending.ID); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("PENDING -> PAID should fail, got %v", err)
	}

	resp, err := f.payLater.Reject(ctx, pending.ID)
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if resp.Status != domain.PayLaterRejected {
		t.Fatalf("expected REJECTED, got %s", resp.Status)
	}

	approved := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterApproved)
	if _, err := f.payLater.Reject(ctx, approved.ID); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("APPROVED -> REJECTED should fail, got %v", err)
	}
	resp, err = f.payLater.MarkPaid(ctx, approved.ID)
	if err != nil {
		t.Fatalf("MarkPaid: %v", err)
	}
	if resp.Status != domain.PayLaterPaid {
		t.Fatalf("expected PAID, got %s", resp.Status)
	}
}

func TestPayLaterUpdate_StatusGoesThroughGraph(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	p := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Status: strPtr("APPROVED")}); !errors.Is(err, ErrPayLaterUseApprove) {
		t.Fatalf("expected ErrPayLaterUseApprove, got %v", err)
	}
	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Status: strPtr("DONE")}); !errors.Is(err, ErrPayLaterInvalidStatus) {
		t.Fatalf("expected ErrPayLaterInvalidStatus, got %v", err)
	}
	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Status: strPtr("PAID")}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected PENDING -> PAID to fail, got %v", err)
	}

	resp, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Status: strPtr("REJECTED")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.Status != domain.PayLaterRejected {
		t.Fatalf("expected REJECTED, got %s", resp.Status)
	}

	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Status: strPtr("PENDING")}); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("REJECTED is terminal, got %v", err)
	}
}

func TestPayLaterUpdate_Terms(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	p := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	resp, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{
		Amount: floatPtr(11_000_000),
		Tenor:  intPtr(30),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.Interest != 0.10 {
		t.Errorf("expected re-priced interest 0.10, got %v", resp.Interest)
	}

	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{Amount: floatPtr(20_000_000)}); err == nil ||
		err.Error() != "Maximum paylater amount is 13500000" {
		t.Fatalf("expected salary cap error, got %v", err)
	}

	approved := f.addPayLater(f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000)).ID, 1_000_000, 6, domain.PayLaterApproved)
	if _, err := f.payLater.Update(ctx, approved.ID, &UpdatePayLaterInput{Amount: floatPtr(2_000_000)}); !errors.Is(err, ErrPayLaterLocked) {
		t.Fatalf("expected ErrPayLaterLocked, got %v", err)
	}
}

func TestPayLaterUpdate_ChangeOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	busy := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	free := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	f.addPayLater(busy.ID, 1_000_000, 6, domain.PayLaterApproved)
	p := f.addPayLater(owner.ID, 1_000_000, 6, domain.PayLaterPending)

	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{UserID: uintPtr(9999)}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{UserID: uintPtr(busy.ID)}); !errors.Is(err, ErrPayLaterActiveExists) {
		t.Fatalf("expected ErrPayLaterActiveExists, got %v", err)
	}

	resp, err := f.payLater.Update(ctx, p.ID, &UpdatePayLaterInput{UserID: uintPtr(free.ID)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.UserID != free.ID || resp.User == nil || resp.User.ID != free.ID {
		t.Fatalf("expected owner %d, got %+v", free.ID, resp)
	}
}

func TestPayLaterUpdate_NoChangesReturnsCurrent(t *testing.T) {
	f := newFixture()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))
	p := f.addPayLater(user.ID, 1_000_000, 6, domain.PayLaterPending)

	resp, err := f.payLater.Update(context.Background(), p.ID, &UpdatePayLaterInput{Status: strPtr("PENDING")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if resp.Status != domain.PayLaterPending || resp.Amount != 1_000_000 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestPayLaterDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	user := f.addUser(domain.RoleNonActiveBPJS, floatPtr(4_500_000))

	if err := f.payLater.Delete(ctx, 9999); !errors.Is(err, ErrPayLaterNotFound) {
		t.Fatalf("expected ErrPayLaterNotFound, got %v", err)
	}

	for _, status := range []domain.PayLaterStatus{domain.PayLaterApproved, domain.PayLaterPaid} {
		p := f.addPayLater(user.ID, 1_000_000, 6, status)
		if err := f.payLater.Delete(ctx, p.ID); !errors.Is(err, ErrPayLaterUndeletable) {
			t.Fatalf("status %s: expected ErrPayLaterUndeletable, got %v", status, err)
		}
	}

	for _, status := range []domain.PayLaterStatus{domain.PayLaterPending, domain.PayLaterRejected} {
		p := f.addPayLater(user.ID, 1_000_000, 6, status)
		if err := f.payLater.Delete(ctx, p.ID); err != nil {
			t.Fatalf("status %s: Delete: %v", status, err)
		}
		if _, err := f.payLater.GetByID(ctx, p.ID); !errors.Is(err, ErrPayLaterNotFound) {
			t.Fatalf("status %s: expected record gone, got %v", status, err)
		}
	}
}

func TestPayLaterList_EmptyPage(t *testing.T) {
	f := newFixture()

	resp, err := f.payLater.List(context.Background(), &ListInput{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if resp.Meta.Total != 0 || resp.Meta.HasNextPage {
		t.Fatalf("unexpected meta %+v", resp.Meta)
	}
}

func intPtr(v int) *int { return &v }

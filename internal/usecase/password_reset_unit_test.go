package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/social-platform-accounts/internal/repository"
)

func TestRequestResetUnknownEmailIsSilent(t *testing.T) {
	repo := &mockAccountRepository{findByEmailErr: repository.ErrNotFound}
	notifier := &mockNotifier{}
	service := NewPasswordResetService(repo, &mockPasswordHasher{}, notifier, nil)

	if err := service.RequestReset(context.Background(), "ghost@example.com"); err != nil {
		t.Fatalf("unknown email must be a silent success, got %v", err)
	}
	if notifier.resetCalls != 0 {
		t.Fatal("no notification may be sent for an unknown email")
	}
}

func TestRequestResetDispatchesNotification(t *testing.T) {
	account := newAccountFixture()
	repo := &mockAccountRepository{findByEmailResult: &account}
	notifier := &mockNotifier{}
	service := NewPasswordResetService(repo, &mockPasswordHasher{}, notifier, nil)

	if err := service.RequestReset(context.Background(), " JDoe@Example.COM "); err != nil {
		t.Fatalf("RequestReset returned error: %v", err)
	}
	if repo.findByEmailLast != "jdoe@example.com" {
		t.Fatalf("lookup used %q, want normalized email", repo.findByEmailLast)
	}
	if notifier.resetCalls != 1 {
		t.Fatalf("resetCalls = %d, want 1", notifier.resetCalls)
	}
	if notifier.lastReset.Username != "jdoe" {
		t.Fatalf("reset sent for %q", notifier.lastReset.Username)
	}
}

func TestRequestResetDeliveryFailureIsNonFatal(t *testing.T) {
	account := newAccountFixture()
	repo := &mockAccountRepository{findByEmailResult: &account}
	notifier := &mockNotifier{resetErr: errors.New("broker down")}
	service := NewPasswordResetService(repo, &mockPasswordHasher{}, notifier, nil)

	if err := service.RequestReset(context.Background(), "jdoe@example.com"); err != nil {
		t.Fatalf("delivery failure must not surface, got %v", err)
	}
}

func TestCompleteResetInstallsNewHash(t *testing.T) {
	account := newAccountFixture()
	repo := &mockAccountRepository{findByUsernameResult: &account}
	hasher := &mockPasswordHasher{hashResult: "reset-hash"}
	service := NewPasswordResetService(repo, hasher, &mockNotifier{}, nil)

	if err := service.CompleteReset(context.Background(), "jdoe", "NewPass!42"); err != nil {
		t.Fatalf("CompleteReset returned error: %v", err)
	}
	if hasher.hashCalls != 1 || hasher.lastPassword != "NewPass!42" {
		t.Fatalf("hashCalls = %d lastPassword = %q", hasher.hashCalls, hasher.lastPassword)
	}
	if repo.saveCalls != 1 {
		t.Fatalf("saveCalls = %d, want 1", repo.saveCalls)
	}
	if repo.savedAccount.PasswordHash != "reset-hash" {
		t.Fatalf("PasswordHash = %q", repo.savedAccount.PasswordHash)
	}
}

func TestCompleteResetUnknownAccount(t *testing.T) {
	repo := &mockAccountRepository{findByUsernameErr: repository.ErrNotFound}
	service := NewPasswordResetService(repo, &mockPasswordHasher{}, &mockNotifier{}, nil)

	if err := service.CompleteReset(context.Background(), "ghost", "NewPass!42"); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("error = %v, want ErrAccountNotFound", err)
	}
}

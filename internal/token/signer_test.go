package token

import (
	"testing"
	"time"
)

func testSigner(ttl time.Duration) *Signer {
	return NewSigner(Config{Secret: "test-secret", Issuer: "test-issuer", TTL: ttl})
}

func TestStudentTokenRoundTrip(t *testing.T) {
	s := testSigner(time.Minute)
	lastLogin := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	tok, err := s.IssueStudent("stu-1", "s2024001", "aca-1", lastLogin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := s.ParseStudent(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "stu-1" {
		t.Fatalf("subject = %q, want stu-1", claims.Subject)
	}
	if claims.StudentID != "s2024001" {
		t.Fatalf("studentID = %q, want s2024001", claims.StudentID)
	}
	if claims.Academy != "aca-1" {
		t.Fatalf("academy = %q, want aca-1", claims.Academy)
	}
	if !claims.LastLoginTime.Equal(lastLogin) {
		t.Fatalf("lastLoginTime = %v, want %v", claims.LastLoginTime, lastLogin)
	}
	if claims.Issuer != "test-issuer" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
	if claims.ID == "" {
		t.Fatalf("expected a jti")
	}
}

func TestAcademyTokenRoundTrip(t *testing.T) {
	s := testSigner(time.Minute)

	tok, err := s.IssueAcademy("aca-1", "Seoul Coding Academy")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := s.ParseAcademy(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "aca-1" || claims.AcademyName != "Seoul Coding Academy" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	s := testSigner(time.Minute)
	tok, err := s.IssueAcademy("aca-1", "Academy")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	other := NewSigner(Config{Secret: "another-secret", Issuer: "test-issuer", TTL: time.Minute})
	if _, err := other.ParseAcademy(tok); err == nil {
		t.Fatalf("expected verification failure with a different secret")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	s := testSigner(-time.Minute)
	tok, err := s.IssueStudent("stu-1", "s1", "aca-1", time.Now())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := s.ParseStudent(tok); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	s := testSigner(time.Minute)
	if _, err := s.ParseStudent("not.a.token"); err == nil {
		t.Fatalf("expected parse failure")
	}
}

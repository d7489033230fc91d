package models

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestJobValidate(t *testing.T) {
	job := Job{Title: "Build a landing page", Description: "Responsive, two sections", Budget: 100}
	if err := job.Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}

	cases := []struct {
		name string
		job  Job
	}{
		{"missing title", Job{Description: "d", Budget: 100}},
		{"missing description", Job{Title: "t", Budget: 100}},
		{"budget below minimum", Job{Title: "t", Description: "d", Budget: 4.99}},
	}
	for _, tc := range cases {
		err := tc.job.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		if !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected ErrValidation, got %v", tc.name, err)
		}
	}
}

func TestHasApplied(t *testing.T) {
	job := Job{Applicants: []Applicant{{FreelancerID: "f1", Status: ApplicationPending}}}
	if !job.HasApplied("f1") {
		t.Error("expected HasApplied true for applicant")
	}
	if job.HasApplied("f2") {
		t.Error("expected HasApplied false for non-applicant")
	}
}

func TestBucketForCompletedWins(t *testing.T) {
	// a completed job lands in the completed bucket whatever the
	// application status says
	for _, status := range []ApplicationStatus{ApplicationPending, ApplicationAccepted, ApplicationRejected} {
		job := Job{
			Status:     JobCompleted,
			Applicants: []Applicant{{FreelancerID: "f1", Status: status}},
		}
		bucket, ok := job.BucketFor("f1")
		if !ok {
			t.Fatalf("status %s: expected applicant found", status)
		}
		if bucket != BucketCompleted {
			t.Errorf("status %s: bucket = %s, want %s", status, bucket, BucketCompleted)
		}
	}
}

func TestBucketForNonCompleted(t *testing.T) {
	cases := []struct {
		appStatus ApplicationStatus
		want      ApplicationBucket
	}{
		{ApplicationPending, BucketPending},
		{ApplicationAccepted, BucketAccepted},
		{ApplicationRejected, BucketRejected},
	}
	for _, tc := range cases {
		job := Job{
			Status:     JobAssigned,
			Applicants: []Applicant{{FreelancerID: "f1", Status: tc.appStatus}},
		}
		bucket, ok := job.BucketFor("f1")
		if !ok || bucket != tc.want {
			t.Errorf("appStatus %s: bucket = %s, want %s", tc.appStatus, bucket, tc.want)
		}
	}

	job := Job{Status: JobOpen}
	if _, ok := job.BucketFor("stranger"); ok {
		t.Error("expected no bucket for non-applicant")
	}
}

func TestAllMilestonesApproved(t *testing.T) {
	job := Job{}
	if !job.AllMilestonesApproved() {
		t.Error("job without milestones should count as resolved")
	}

	job.Milestones = []Milestone{
		{ID: primitive.NewObjectID(), Status: MilestoneApproved},
		{ID: primitive.NewObjectID(), Status: MilestoneApprovalRequested},
	}
	if job.AllMilestonesApproved() {
		t.Error("unapproved milestone should block resolution")
	}

	job.Milestones[1].Status = MilestoneApproved
	if !job.AllMilestonesApproved() {
		t.Error("all approved milestones should resolve")
	}
}

func TestTotalMilestonePercentage(t *testing.T) {
	job := Job{Milestones: []Milestone{
		{Percentage: 40},
		{Percentage: 35.5},
	}}
	if got := job.TotalMilestonePercentage(); got != 75.5 {
		t.Errorf("total = %v, want 75.5", got)
	}
}

func TestIsParty(t *testing.T) {
	fid := "f1"
	job := Job{EmployerID: "e1", FreelancerID: &fid}
	if !job.IsParty("e1") || !job.IsParty("f1") {
		t.Error("employer and assigned freelancer are parties")
	}
	if job.IsParty("other") {
		t.Error("stranger is not a party")
	}
}

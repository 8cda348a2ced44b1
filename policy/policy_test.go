package policy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/viant/hitl/policy"
)

func TestPolicy_Evaluate(t *testing.T) {
	type testCase struct {
		name   string
		policy *policy.Policy
		planID string
		expect policy.Verdict
	}

	tests := []testCase{
		{name: "nil policy", planID: "plan-1", expect: policy.VerdictAsk},
		{name: "ask", policy: &policy.Policy{Mode: policy.ModeAsk}, planID: "plan-1", expect: policy.VerdictAsk},
		{name: "auto", policy: &policy.Policy{Mode: policy.ModeAuto}, planID: "plan-1", expect: policy.VerdictApprove},
		{name: "deny", policy: &policy.Policy{Mode: policy.ModeDeny}, planID: "plan-1", expect: policy.VerdictReject},
		{
			name:   "auto allow list match",
			policy: &policy.Policy{Mode: policy.ModeAuto, AllowList: []string{"Deploy-*"}},
			planID: "deploy-42",
			expect: policy.VerdictApprove,
		},
		{
			name:   "auto allow list miss",
			policy: &policy.Policy{Mode: policy.ModeAuto, AllowList: []string{"deploy-*"}},
			planID: "drop-db",
			expect: policy.VerdictAsk,
		},
		{
			name:   "block list wins over auto",
			policy: &policy.Policy{Mode: policy.ModeAuto, BlockList: []string{"drop-db"}},
			planID: "DROP-DB",
			expect: policy.VerdictReject,
		},
		{
			name:   "block list applies in ask mode",
			policy: &policy.Policy{BlockList: []string{"drop-*"}},
			planID: "drop-db",
			expect: policy.VerdictReject,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.policy.Evaluate(tc.planID))
		})
	}
}

func TestPolicy_Unattended(t *testing.T) {
	var nilPolicy *policy.Policy
	assert.False(t, nilPolicy.Unattended())
	assert.False(t, (&policy.Policy{Mode: policy.ModeAsk}).Unattended())
	assert.True(t, (&policy.Policy{Mode: policy.ModeAuto}).Unattended())
	assert.True(t, (&policy.Policy{BlockList: []string{"x"}}).Unattended())
}

func TestConfig(t *testing.T) {
	assert.NoError(t, (&policy.Config{}).Validate())
	assert.NoError(t, (&policy.Config{Mode: "AUTO"}).Validate())
	assert.Error(t, (&policy.Config{Mode: "sometimes"}).Validate())

	p := policy.FromConfig(&policy.Config{Mode: "Deny", AllowList: []string{"a"}})
	assert.Equal(t, policy.ModeDeny, p.Mode)
	assert.Equal(t, []string{"a"}, p.AllowList)
	assert.Nil(t, policy.FromConfig(nil))
}

package model

import "testing"

func TestNegotiationResolved(t *testing.T) {
	tests := []struct {
		status string
		want   bool
	}{
		{status: NegotiationPending, want: false},
		{status: NegotiationAccepted, want: true},
		{status: NegotiationRejected, want: true},
	}
	for _, tt := range tests {
		n := Negotiation{Status: tt.status}
		if got := n.Resolved(); got != tt.want {
			t.Errorf("Negotiation{Status: %q}.Resolved() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestValidResponse(t *testing.T) {
	tests := []struct {
		response string
		want     bool
	}{
		{response: NegotiationAccepted, want: true},
		{response: NegotiationRejected, want: true},
		{response: NegotiationPending, want: false},
		{response: "", want: false},
		{response: "ACCEPTED", want: false},
		{response: "maybe", want: false},
	}
	for _, tt := range tests {
		if got := ValidResponse(tt.response); got != tt.want {
			t.Errorf("ValidResponse(%q) = %v, want %v", tt.response, got, tt.want)
		}
	}
}

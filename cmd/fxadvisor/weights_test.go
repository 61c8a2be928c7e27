package main

import (
	"testing"

	"github.com/omerorhan/fx-advisor/internal/engine"
)

func TestParseWeights(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    engine.PreferenceWeights
		wantErr bool
	}{
		{name: "valid", in: "3,4,5,2", want: engine.PreferenceWeights{Convenience: 3, Security: 4, Speed: 5, Cost: 2}},
		{name: "spaces and decimals", in: " 1.5, 2 ,3,0", want: engine.PreferenceWeights{Convenience: 1.5, Security: 2, Speed: 3}},
		{name: "too few", in: "1,2,3", wantErr: true},
		{name: "not a number", in: "1,2,x,4", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseWeights(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseWeights() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

package subproc

import (
	"reflect"
	"testing"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		style   Style
		opts    Opts
		want    []string
		wantErr bool
	}{
		{
			name:  "GNU style renders long and short opts",
			style: GNUOpt,
			opts: Opts{
				{Name: "porcelain", Value: true},
				{Name: "L", Value: "5,5"},
				{Name: "z", Value: true},
			},
			want: []string{"--porcelain", "-L", "5,5", "-z"},
		},
		{
			name:  "OneDash renders every name with a single dash",
			style: OneDash,
			opts: Opts{
				{Name: "porcelain", Value: true},
				{Name: "contents", Value: "-"},
			},
			want: []string{"-porcelain", "-contents", "-"},
		},
		{
			name:  "short-flag cluster expands each character",
			style: GNUOpt,
			opts:  Opts{{Name: "-", Value: "az"}},
			want:  []string{"-a", "-z"},
		},
		{
			name:    "equals sign in a flag-only key is rejected",
			style:   GNUOpt,
			opts:    Opts{{Name: "diff-filter=D", Value: true}},
			wantErr: true,
		},
		{
			name:  "false flag is omitted",
			style: GNUOpt,
			opts:  Opts{{Name: "porcelain", Value: false}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := Render(tt.style, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Render() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !reflect.DeepEqual(argv, tt.want) {
				t.Errorf("Render() = %v, want %v", argv, tt.want)
			}
		})
	}
}

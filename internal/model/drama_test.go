package model

import (
	"testing"
	"time"
)

func TestDramaBeforeSaveDerivesNewFlag(t *testing.T) {
	tests := []struct {
		name    string
		release time.Time
		want    bool
	}{
		{"上周上线是新剧", time.Now().AddDate(0, 0, -7), true},
		{"昨天上线是新剧", time.Now().AddDate(0, 0, -1), true},
		{"三个月前不是新剧", time.Now().AddDate(0, -3, 0), false},
		{"零值日期不是新剧", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Drama{ReleaseDate: tt.release, IsNewDrama: !tt.want}
			if err := d.BeforeSave(nil); err != nil {
				t.Fatalf("BeforeSave: %v", err)
			}
			if d.IsNewDrama != tt.want {
				t.Errorf("IsNewDrama = %v, want %v", d.IsNewDrama, tt.want)
			}
		})
	}
}

func TestUserPreferenceIsEmpty(t *testing.T) {
	var nilPref *UserPreference
	if !nilPref.IsEmpty() {
		t.Error("nil 画像应视为空")
	}
	if !(&UserPreference{}).IsEmpty() {
		t.Error("无任何加权项应视为空")
	}
	withTags := &UserPreference{Tags: []WeightedItem{{Name: "逆袭", Weight: 0.5}}}
	if withTags.IsEmpty() {
		t.Error("有加权项不应视为空")
	}
}

package types

import "testing"

func TestEntityValidate(t *testing.T) {
	if err := (Movie{}).Validate(); err != ErrInvalidName {
		t.Errorf("Movie{}.Validate() = %v, want ErrInvalidName", err)
	}
	if err := (Movie{Name: "Return of the Jedi"}).Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
	if err := (Character{}).Validate(); err != ErrInvalidName {
		t.Errorf("Character{}.Validate() = %v, want ErrInvalidName", err)
	}
}

func TestCharacterMovieRefs(t *testing.T) {
	first, died := int64(1), int64(3)
	vader := Character{Name: "Darth Vader", FirstAppearedMovieID: &first, DiedInMovieID: &died}
	refs := vader.MovieRefs()
	if len(refs) != 2 || refs[0] != 1 || refs[1] != 3 {
		t.Errorf("MovieRefs() = %v, want [1 3]", refs)
	}
	if vader.Alive() {
		t.Error("Alive() = true, want false")
	}

	thrawn := Character{Name: "Grand Admiral Thrawn"}
	if len(thrawn.MovieRefs()) != 0 {
		t.Errorf("MovieRefs() = %v, want empty", thrawn.MovieRefs())
	}
	if !thrawn.Alive() {
		t.Error("Alive() = false, want true")
	}
}

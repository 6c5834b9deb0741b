package game

import (
	"errors"

	"github.com/ncruces/zenity"
)

// Dialogs are the modal prompts the app raises. The ok results are false
// when the user cancels.
type Dialogs interface {
	ShowFragment(code string) error
	AskFragment() (code string, ok bool, err error)
	SaveCSVPath() (path string, ok bool, err error)
	ConfirmReset() (ok bool, err error)
	Error(msg string)
}

// NativeDialogs shows system dialogs through zenity. Every call blocks the
// caller until the dialog closes.
type NativeDialogs struct{}

func (NativeDialogs) ShowFragment(code string) error {
	_, err := zenity.Entry("Copy this code to carry your soul to another realm:",
		zenity.Title("Soul Fragment"),
		zenity.EntryText(code),
		zenity.OKLabel("Done"),
	)
	if errors.Is(err, zenity.ErrCanceled) {
		return nil
	}
	return err
}

func (NativeDialogs) AskFragment() (string, bool, error) {
	code, err := zenity.Entry("Paste a soul fragment to absorb it:",
		zenity.Title("Absorb Soul Fragment"),
		zenity.OKLabel("Absorb"),
	)
	return cancelled(code, err)
}

func (NativeDialogs) SaveCSVPath() (string, bool, error) {
	path, err := zenity.SelectFileSave(
		zenity.Title("Export Chronicle"),
		zenity.Filename("lifequest.csv"),
		zenity.ConfirmOverwrite(),
		zenity.FileFilters{{
			Name:     "CSV",
			Patterns: []string{"*.csv"},
		}},
	)
	return cancelled(path, err)
}

func (NativeDialogs) ConfirmReset() (bool, error) {
	err := zenity.Question("Reset the realm? Every soul and its history will be erased.",
		zenity.Title("Reset"),
		zenity.WarningIcon,
		zenity.OKLabel("Erase"),
		zenity.CancelLabel("Keep"),
	)
	_, ok, err := cancelled("", err)
	return ok, err
}

func (NativeDialogs) Error(msg string) {
	_ = zenity.Error(msg, zenity.Title("Soul Fragment"), zenity.ErrorIcon)
}

func cancelled(v string, err error) (string, bool, error) {
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

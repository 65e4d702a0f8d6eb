package model

import "strings"

// OperatingSystem is the user's operating system.
type OperatingSystem string

const (
	OSLinux   OperatingSystem = "linux"
	OSWindows OperatingSystem = "windows"
	OSMacOS   OperatingSystem = "macos"
	OSUnknown OperatingSystem = "unknown"
)

// PackageManager is the user's Python package manager.
type PackageManager string

const (
	PackageManagerPip     PackageManager = "pip"
	PackageManagerConda   PackageManager = "conda"
	PackageManagerPoetry  PackageManager = "poetry"
	PackageManagerUnknown PackageManager = "unknown"
)

// Editor is the user's code editor.
type Editor string

const (
	EditorVSCode  Editor = "vscode"
	EditorPyCharm Editor = "pycharm"
	EditorSublime Editor = "sublime"
	EditorVim     Editor = "vim"
	EditorJupyter Editor = "jupyter"
	EditorUnknown Editor = "unknown"
)

var osAliases = map[string]OperatingSystem{
	"linux":   OSLinux,
	"windows": OSWindows,
	"win":     OSWindows,
	"macos":   OSMacOS,
	"mac":     OSMacOS,
	"osx":     OSMacOS,
	"darwin":  OSMacOS,
}

var packageManagerAliases = map[string]PackageManager{
	"pip":       PackageManagerPip,
	"pip3":      PackageManagerPip,
	"conda":     PackageManagerConda,
	"anaconda":  PackageManagerConda,
	"miniconda": PackageManagerConda,
	"poetry":    PackageManagerPoetry,
}

var editorAliases = map[string]Editor{
	"vscode":             EditorVSCode,
	"code":               EditorVSCode,
	"visual studio code": EditorVSCode,
	"pycharm":            EditorPyCharm,
	"charm":              EditorPyCharm,
	"sublime":            EditorSublime,
	"sublime text":       EditorSublime,
	"vim":                EditorVim,
	"vi":                 EditorVim,
	"neovim":             EditorVim,
	"jupyter":            EditorJupyter,
	"notebook":           EditorJupyter,
	"jupyterlab":         EditorJupyter,
}

// ParseOS maps free-form input to an OperatingSystem. Unrecognized input yields OSUnknown.
func ParseOS(s string) OperatingSystem {
	if v, ok := osAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return OSUnknown
}

// ParsePackageManager maps free-form input to a PackageManager.
func ParsePackageManager(s string) PackageManager {
	if v, ok := packageManagerAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return PackageManagerUnknown
}

// ParseEditor maps free-form input to an Editor.
func ParseEditor(s string) Editor {
	if v, ok := editorAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return v
	}
	return EditorUnknown
}

// UserProfile holds the user's environment, used to personalize solutions.
type UserProfile struct {
	OS             OperatingSystem `json:"os" yaml:"os"`
	PackageManager PackageManager  `json:"package_manager" yaml:"package_manager"`
	Editor         Editor          `json:"editor" yaml:"editor"`
	// Configured is false for the default profile.
	Configured bool `json:"configured" yaml:"configured"`
}

// DefaultProfile is used for users with no stored preference.
var DefaultProfile = UserProfile{
	OS:             OSLinux,
	PackageManager: PackageManagerPip,
	Editor:         EditorVSCode,
}

// Update returns a copy with the non-empty fields applied and Configured set.
func (p UserProfile) Update(os, packageManager, editor string) UserProfile {
	out := p
	if os != "" {
		out.OS = ParseOS(os)
	}
	if packageManager != "" {
		out.PackageManager = ParsePackageManager(packageManager)
	}
	if editor != "" {
		out.Editor = ParseEditor(editor)
	}
	out.Configured = true
	return out
}

// Snapshot returns the part of the profile recorded with a cache entry.
func (p UserProfile) Snapshot() ProfileSnapshot {
	return ProfileSnapshot{OS: p.OS, PackageManager: p.PackageManager}
}

// ProfileSnapshot is the {os, package_manager} pair that scopes cache reuse.
type ProfileSnapshot struct {
	OS             OperatingSystem `json:"os"`
	PackageManager PackageManager  `json:"package_manager"`
}

// Matches reports whether the snapshot was taken from a profile compatible with p.
func (s ProfileSnapshot) Matches(p UserProfile) bool {
	return s.OS == p.OS && s.PackageManager == p.PackageManager
}

package types

import "encoding/xml"

const (
	AndroidNamespace   = "http://schemas.android.com/apk/res/android"
	NativeActivityName = "android.app.NativeActivity"
	ManifestFileName   = "AndroidManifest.xml"
)

// AndroidManifest carries the subset of AndroidManifest.xml needed to
// package and launch a native activity.
type AndroidManifest struct {
	XMLName     xml.Name     `xml:"manifest" yaml:"-"`
	NSAndroid   string       `xml:"xmlns:android,attr" yaml:"-"`
	Package     string       `xml:"package,attr" yaml:"package"`
	VersionCode uint32       `xml:"android:versionCode,attr,omitempty" yaml:"version_code,omitempty"`
	VersionName string       `xml:"android:versionName,attr,omitempty" yaml:"version_name,omitempty"`
	SDK         SDK          `xml:"uses-sdk" yaml:"sdk,omitempty"`
	Permissions []Permission `xml:"uses-permission" yaml:"uses_permission,omitempty"`
	Application Application  `xml:"application" yaml:"application"`
}

type SDK struct {
	MinSDKVersion    uint32 `xml:"android:minSdkVersion,attr,omitempty" yaml:"min_sdk_version,omitempty"`
	TargetSDKVersion uint32 `xml:"android:targetSdkVersion,attr,omitempty" yaml:"target_sdk_version,omitempty"`
}

type Permission struct {
	Name string `xml:"android:name,attr" yaml:"name"`
}

type Application struct {
	Label      string   `xml:"android:label,attr,omitempty" yaml:"label,omitempty"`
	Debuggable bool     `xml:"android:debuggable,attr,omitempty" yaml:"debuggable,omitempty"`
	HasCode    bool     `xml:"android:hasCode,attr" yaml:"has_code,omitempty"`
	Activity   Activity `xml:"activity" yaml:"activity"`
}

type Activity struct {
	Name          string         `xml:"android:name,attr" yaml:"-"`
	Exported      bool           `xml:"android:exported,attr" yaml:"-"`
	ConfigChanges string         `xml:"android:configChanges,attr,omitempty" yaml:"config_changes,omitempty"`
	MetaData      []MetaData     `xml:"meta-data" yaml:"meta_data,omitempty"`
	IntentFilters []IntentFilter `xml:"intent-filter" yaml:"-"`
}

type MetaData struct {
	Name  string `xml:"android:name,attr" yaml:"name"`
	Value string `xml:"android:value,attr" yaml:"value"`
}

type IntentFilter struct {
	Actions    []NamedElement `xml:"action"`
	Categories []NamedElement `xml:"category"`
}

type NamedElement struct {
	Name string `xml:"android:name,attr"`
}

const libNameMetaData = "android.app.lib_name"

// LibName returns the library NativeActivity loads, if configured.
func (m AndroidManifest) LibName() string {
	for _, meta := range m.Application.Activity.MetaData {
		if meta.Name == libNameMetaData {
			return meta.Value
		}
	}
	return ""
}

// WithLibName sets the library NativeActivity loads. name is the library
// file name without the lib prefix and .so suffix.
func (m AndroidManifest) WithLibName(name string) AndroidManifest {
	meta := make([]MetaData, 0, len(m.Application.Activity.MetaData)+1)
	for _, entry := range m.Application.Activity.MetaData {
		if entry.Name != libNameMetaData {
			meta = append(meta, entry)
		}
	}
	m.Application.Activity.MetaData = append(meta, MetaData{Name: libNameMetaData, Value: name})
	return m
}

// WithNativeActivity fills the fixed parts of the launcher activity.
func (m AndroidManifest) WithNativeActivity() AndroidManifest {
	m.NSAndroid = AndroidNamespace
	m.Application.Activity.Name = NativeActivityName
	m.Application.Activity.Exported = true
	if m.Application.Activity.ConfigChanges == "" {
		m.Application.Activity.ConfigChanges = "orientation|keyboardHidden|screenSize"
	}
	m.Application.Activity.IntentFilters = []IntentFilter{{
		Actions:    []NamedElement{{Name: "android.intent.action.MAIN"}},
		Categories: []NamedElement{{Name: "android.intent.category.LAUNCHER"}},
	}}
	return m
}

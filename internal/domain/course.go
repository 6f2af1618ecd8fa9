package domain

// Course is a university course items can be filed under.
// Aliases are alternate names carried over from older archive generations,
// mostly used by search and import tooling.
type Course struct {
	ID        int64    `json:"-"`
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Aliases   []string `json:"aliases"`
}

// Folder is the physical folder an item can be found in.
type Folder struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
}

// Author is the person an exam is attributed to, usually the examiner.
type Author struct {
	ID   int64  `json:"-"`
	Name string `json:"name"`
}

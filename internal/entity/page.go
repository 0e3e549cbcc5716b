package entity

// Image is an <img> reference with its source resolved to an absolute URL.
type Image struct {
	Src string `json:"src"`
	Alt string `json:"alt"`
}

// Issue is a structured finding with a machine code and a human message.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParsedPage is the structural model extracted from one HTML document.
// Issues starts with the parser's first-pass findings; later stages may replace
// or extend it before suggestion generation reads it.
type ParsedPage struct {
	Title           string   `json:"title"`
	MetaDescription string   `json:"meta_description"`
	H1              []string `json:"h1"`
	H2              []string `json:"h2"`
	H3              []string `json:"h3"`
	Images          []Image  `json:"images"`
	WordCount       int      `json:"word_count"`
	MainText        string   `json:"main_text"`
	Issues          []Issue  `json:"issues"`
	RawHTMLSnippet  string   `json:"raw_html_snippet"`
}

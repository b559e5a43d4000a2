// Package crossref provides a client for the CrossRef REST API.
package crossref

// Work represents a registered work from the CrossRef API.
type Work struct {
	DOI            string       `json:"DOI"`
	Type           string       `json:"type"`
	Title          []string     `json:"title"`
	ContainerTitle []string     `json:"container-title,omitempty"`
	Author         []WorkAuthor `json:"author,omitempty"`
	Issued         WorkDate     `json:"issued"`
	Volume         string       `json:"volume,omitempty"`
	Issue          string       `json:"issue,omitempty"`
	Page           string       `json:"page,omitempty"`
	Publisher      string       `json:"publisher,omitempty"`
	ISSN           []string     `json:"ISSN,omitempty"`
	ISBN           []string     `json:"ISBN,omitempty"`
	URL            string       `json:"URL,omitempty"`
	Abstract       string       `json:"abstract,omitempty"` // JATS XML fragment
	Subject        []string     `json:"subject,omitempty"`
}

// WorkAuthor is one contributor. Organizations carry only Name;
// persons carry Given and Family.
type WorkAuthor struct {
	Given  string `json:"given,omitempty"`
	Family string `json:"family,omitempty"`
	Name   string `json:"name,omitempty"`
}

// WorkDate is CrossRef's date-parts representation: [[year, month,
// day]] with the shorter forms [[year, month]] and [[year]].
type WorkDate struct {
	DateParts [][]int `json:"date-parts"`
}

// Year returns the year, or 0 when absent.
func (d WorkDate) Year() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) < 1 {
		return 0
	}
	return d.DateParts[0][0]
}

// Month returns the month 1-12, or 0 when absent.
func (d WorkDate) Month() int {
	if len(d.DateParts) == 0 || len(d.DateParts[0]) < 2 {
		return 0
	}
	m := d.DateParts[0][1]
	if m < 1 || m > 12 {
		return 0
	}
	return m
}

// worksEnvelope is the /works/{doi} response wrapper.
type worksEnvelope struct {
	Status      string `json:"status"`
	MessageType string `json:"message-type"`
	Message     Work   `json:"message"`
}

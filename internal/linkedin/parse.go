package linkedin

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/linkedinjobs/internal/models"
)

// Labels as they appear in the detail page criteria list.
var employmentTypeLabels = map[string]models.EmploymentType{
	"Full-time":  models.FullTime,
	"Part-time":  models.PartTime,
	"Contract":   models.Contract,
	"Temporary":  models.Temporary,
	"Internship": models.Internship,
	"Other":      models.OtherEmployment,
}

var experienceLevelLabels = map[string]models.ExperienceLevel{
	"Internship":       models.ExperienceInternship,
	"Entry level":      models.ExperienceEntryLevel,
	"Associate":        models.ExperienceAssociate,
	"Mid-Senior level": models.ExperienceMidSenior,
	"Director":         models.ExperienceDirector,
	"Executive":        models.ExperienceExecutive,
}

var firstIntegerPattern = regexp.MustCompile(`\d+`)

// ParseJobs extracts the listings from one search results page. Every
// li element must be a job card; a card with a missing field fails the
// whole page with a field-specific error.
func ParseJobs(body string) ([]models.Job, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, extractionErr("listing page")
	}

	var jobs []models.Job
	var parseErr error
	doc.Find("li").EachWithBreak(func(_ int, card *goquery.Selection) bool {
		job, err := parseJob(card)
		if err != nil {
			parseErr = err
			return false
		}
		jobs = append(jobs, job)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return jobs, nil
}

func parseJob(card *goquery.Selection) (models.Job, error) {
	var job models.Job

	href, ok := card.Find("a[class*='_full-link']").First().Attr("href")
	if !ok || href == "" {
		return job, extractionErr("job url")
	}
	job.URL = href

	job.Title = trimmedText(card.Find("h3[class*='_title']"))
	if job.Title == "" {
		return job, extractionErr("job title")
	}

	job.Location = trimmedText(card.Find("span[class*='_location']"))
	if job.Location == "" {
		return job, extractionErr("job location")
	}

	company := card.Find("h4[class*='_subtitle']").Find("a").First()
	job.Company = trimmedText(company)
	if job.Company == "" {
		return job, extractionErr("company title")
	}

	job.CompanyURL, _ = company.Attr("href")
	if job.CompanyURL == "" {
		return job, extractionErr("company url")
	}

	posted, ok := card.Find("time[class*='listdate']").First().Attr("datetime")
	if !ok {
		return job, extractionErr("posting date")
	}
	postedAt, err := time.Parse("2006-01-02", strings.TrimSpace(posted))
	if err != nil {
		return job, extractionErr("posting date")
	}
	job.PostedAt = postedAt

	return job, nil
}

// ParseJobDetails extracts the full posting from one detail page. The
// description keeps its inner markup. Criteria entries with unmapped
// values leave the optional experience level unset; employment type is
// mandatory.
func ParseJobDetails(body string) (models.JobDetails, error) {
	var details models.JobDetails

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return details, extractionErr("detail page")
	}

	markup := doc.Find("div[class*='markup']").First()
	if markup.Length() == 0 {
		return details, extractionErr("job description")
	}
	description, err := markup.Html()
	if err != nil {
		return details, extractionErr("job description")
	}
	details.Description = strings.TrimSpace(description)
	if details.Description == "" {
		return details, extractionErr("job description")
	}

	var haveEmploymentType bool
	var criteriaErr error
	doc.Find("li[class*='job-criteria-item']").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		keySel := item.Find("h3[class*='job-criteria-subheader']")
		valueSel := item.Find("span[class*='job-criteria-text']")
		if keySel.Length() == 0 || valueSel.Length() == 0 {
			criteriaErr = extractionErr("job criteria")
			return false
		}

		switch trimmedText(keySel) {
		case "Employment type":
			if et, ok := employmentTypeLabels[trimmedText(valueSel)]; ok {
				details.EmploymentType = et
				haveEmploymentType = true
			}
		case "Seniority level":
			if level, ok := experienceLevelLabels[trimmedText(valueSel)]; ok {
				details.ExperienceLevel = level
			}
		}
		return true
	})
	if criteriaErr != nil {
		return models.JobDetails{}, criteriaErr
	}
	if !haveEmploymentType {
		return models.JobDetails{}, extractionErr("employment type")
	}

	applicants := doc.Find("[class*='num-applicants']").First()
	if applicants.Length() == 0 {
		return models.JobDetails{}, extractionErr("applicant count")
	}
	raw := firstIntegerPattern.FindString(applicants.Text())
	if raw == "" {
		return models.JobDetails{}, extractionErr("applicant count")
	}
	count, err := strconv.Atoi(raw)
	if err != nil {
		return models.JobDetails{}, extractionErr("applicant count")
	}
	details.ApplicantCount = count

	return details, nil
}

func trimmedText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.First().Text()), " ")
}

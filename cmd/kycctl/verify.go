package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"kycgate/internal/kycclient"
	"kycgate/internal/verification"
	strutil "kycgate/pkg/string"
)

type verifyOptions struct {
	front    string
	back     string
	selfie   string
	fullName string
	dob      string
}

func newVerifyCmd(root *rootOptions) *cobra.Command {
	opts := &verifyOptions{}
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Submit an ID document and selfie for verification",
		Example: "  kycctl verify --front id.jpg --selfie me.jpg\n" +
			"  kycctl verify --front id.jpg --back id_back.jpg --selfie me.jpg --name \"Jane Doe\" -o json",
		RunE: func(cmd *cobra.Command, _ []string) error {
			upload, err := opts.upload()
			if err != nil {
				return err
			}
			result, err := root.client().Verify(cmd.Context(), upload)
			if err != nil {
				return err
			}
			if root.output != outputTable {
				return encode(cmd.OutOrStdout(), root.output, result)
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.front, "front", "", "ID document front image")
	cmd.Flags().StringVar(&opts.back, "back", "", "ID document back image")
	cmd.Flags().StringVar(&opts.selfie, "selfie", "", "selfie image")
	cmd.Flags().StringVar(&opts.fullName, "name", "", "full name, overriding the document")
	cmd.Flags().StringVar(&opts.dob, "dob", "", "date of birth, overriding the document")
	_ = cmd.MarkFlagRequired("front")
	_ = cmd.MarkFlagRequired("selfie")
	return cmd
}

func (o *verifyOptions) upload() (kycclient.Upload, error) {
	strutil.TrimStrings(&o.front, &o.back, &o.selfie, &o.fullName, &o.dob)
	front, err := readFile(o.front)
	if err != nil {
		return kycclient.Upload{}, err
	}
	selfie, err := readFile(o.selfie)
	if err != nil {
		return kycclient.Upload{}, err
	}
	u := kycclient.Upload{Front: front, Selfie: selfie, FullName: o.fullName, DOB: o.dob}
	if o.back != "" {
		back, err := readFile(o.back)
		if err != nil {
			return kycclient.Upload{}, err
		}
		u.Back = &back
	}
	return u, nil
}

func readFile(path string) (kycclient.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return kycclient.File{}, fmt.Errorf("read %s: %w", path, err)
	}
	return kycclient.File{Name: filepath.Base(path), Data: data}, nil
}

func renderResult(w io.Writer, r *verification.Result) {
	if r.Passed {
		color.New(color.FgGreen, color.Bold).Fprintf(w, "PASSED (%s)\n", r.Reason)
	} else {
		color.New(color.FgRed, color.Bold).Fprintf(w, "FAILED (%s)\n", r.Reason)
	}
	fmt.Fprintf(w, "request %s, sanctions %s\n\n", r.RequestID, r.SanctionsStatus)

	scores := tablewriter.NewWriter(w)
	scores.SetHeader([]string{"Signal", "Score"})
	scores.AppendBulk([][]string{
		{"face_match", score(r.Scores.FaceMatch)},
		{"liveness", score(r.Scores.Liveness)},
		{"ocr_confidence", score(r.Scores.OCRConfidence)},
		{"sanctions_match", score(r.Scores.SanctionsMatch)},
		{"overall", score(r.Scores.Overall)},
	})
	scores.Render()

	fields := tablewriter.NewWriter(w)
	fields.SetHeader([]string{"Field", "Value"})
	e := r.Extracted
	for _, row := range []struct {
		name  string
		value *string
	}{
		{"full_name", e.FullName},
		{"dob", e.DOB},
		{"document_number", e.DocumentNumber},
		{"nationality", e.Nationality},
		{"expiry_date", e.ExpiryDate},
		{"address", e.Address},
	} {
		fields.Append([]string{row.name, deref(row.value)})
	}
	fields.SetFooter([]string{"source", e.Source})
	fields.Render()

	if len(r.SanctionsMatches) == 0 {
		return
	}
	matches := tablewriter.NewWriter(w)
	matches.SetHeader([]string{"Name", "Score", "Country", "Dataset", "ID"})
	for _, m := range r.SanctionsMatches {
		s := "-"
		if m.Score != nil {
			s = score(*m.Score)
		}
		matches.Append([]string{deref(m.Name), s, deref(m.Country), deref(m.Dataset), deref(m.ID)})
	}
	matches.Render()
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

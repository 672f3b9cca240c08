// Package verify holds the step definitions for POST /api/kyc/verify.
package verify

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/cucumber/godog"

	"kycgate/internal/platform/imaging"
	"kycgate/internal/verification/handler"
)

const verifyPath = "/api/kyc/verify"

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	AttachFile(field string, data []byte)
	SetField(field, value string)
	ClearToken()
	SetToken(token string)
	POSTMultipart(path string) error
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers verification step definitions.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &verifySteps{tc: tc}

	ctx.Step(`^an ID document photo of the applicant$`, steps.attachPortrait(handler.FieldFront))
	ctx.Step(`^a selfie of the same applicant$`, steps.attachPortrait(handler.FieldSelfie))
	ctx.Step(`^a selfie with no face$`, steps.attachFlat(handler.FieldSelfie))
	ctx.Step(`^an ID document photo with no face$`, steps.attachFlat(handler.FieldFront))
	ctx.Step(`^a selfie that is not an image$`, steps.attachGarbage(handler.FieldSelfie))
	ctx.Step(`^the applicant name is "([^"]*)"$`, steps.setField(handler.FieldFullName))
	ctx.Step(`^the applicant date of birth is "([^"]*)"$`, steps.setField(handler.FieldDOB))
	ctx.Step(`^I am not authenticated$`, steps.unauthenticated)
	ctx.Step(`^I use the bearer token "([^"]*)"$`, steps.useToken)

	ctx.Step(`^I submit the verification$`, steps.submit)

	ctx.Step(`^the verification should pass$`, steps.passedShouldBe(true))
	ctx.Step(`^the verification should fail with reason "([^"]*)"$`, steps.failedWithReason)
	ctx.Step(`^the sanctions status should be "([^"]*)"$`, steps.sanctionsStatusShouldBe)
	ctx.Step(`^the score "([^"]*)" should be between ([0-9.]+) and ([0-9.]+)$`, steps.scoreBetween)
}

type verifySteps struct {
	tc TestContext
}

func (s *verifySteps) attachPortrait(field string) func(context.Context) error {
	return func(context.Context) error {
		data, err := imaging.EncodePNG(portrait(240, 320))
		if err != nil {
			return err
		}
		s.tc.AttachFile(field, data)
		return nil
	}
}

func (s *verifySteps) attachFlat(field string) func(context.Context) error {
	return func(context.Context) error {
		img := image.NewRGBA(image.Rect(0, 0, 240, 320))
		for i := range img.Pix {
			img.Pix[i] = 200
		}
		data, err := imaging.EncodePNG(img)
		if err != nil {
			return err
		}
		s.tc.AttachFile(field, data)
		return nil
	}
}

func (s *verifySteps) attachGarbage(field string) func(context.Context) error {
	return func(context.Context) error {
		s.tc.AttachFile(field, []byte("definitely not a picture"))
		return nil
	}
}

func (s *verifySteps) setField(field string) func(context.Context, string) error {
	return func(_ context.Context, value string) error {
		s.tc.SetField(field, value)
		return nil
	}
}

func (s *verifySteps) unauthenticated(context.Context) error {
	s.tc.ClearToken()
	return nil
}

func (s *verifySteps) useToken(_ context.Context, token string) error {
	s.tc.SetToken(token)
	return nil
}

func (s *verifySteps) submit(context.Context) error {
	return s.tc.POSTMultipart(verifyPath)
}

func (s *verifySteps) passedShouldBe(want bool) func(context.Context) error {
	return func(context.Context) error {
		passed, err := s.tc.GetResponseField("passed")
		if err != nil {
			return err
		}
		if passed != want {
			reason, _ := s.tc.GetResponseField("reason") //nolint:errcheck // diagnostic only
			return fmt.Errorf("expected passed=%t, got %v (reason %v)", want, passed, reason)
		}
		return nil
	}
}

func (s *verifySteps) failedWithReason(ctx context.Context, reason string) error {
	if err := s.passedShouldBe(false)(ctx); err != nil {
		return err
	}
	got, err := s.tc.GetResponseField("reason")
	if err != nil {
		return err
	}
	if got != reason {
		return fmt.Errorf("expected reason %s, got %v", reason, got)
	}
	return nil
}

func (s *verifySteps) sanctionsStatusShouldBe(_ context.Context, status string) error {
	got, err := s.tc.GetResponseField("sanctions_status")
	if err != nil {
		return err
	}
	if got != status {
		return fmt.Errorf("expected sanctions_status %s, got %v", status, got)
	}
	return nil
}

func (s *verifySteps) scoreBetween(_ context.Context, name string, lo, hi float64) error {
	v, err := s.tc.GetResponseField("scores." + name)
	if err != nil {
		return err
	}
	f, ok := v.(float64)
	if !ok || f < lo || f > hi {
		return fmt.Errorf("expected scores.%s in [%g, %g], got %v", name, lo, hi, v)
	}
	return nil
}

// portrait draws a saturated, detailed test card: a skin-toned oval on a
// striped background. It is deterministic so the same card matches itself.
func portrait(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	rx, ry := float64(w)*0.3, float64(h)*0.35
	for y := range h {
		for x := range w {
			dx, dy := (float64(x)-cx)/rx, (float64(y)-cy)/ry
			switch {
			case dx*dx+dy*dy <= 1:
				shade := 30 * math.Sin(float64(x+y)/3)
				img.Set(x, y, color.RGBA{R: uint8(210 + shade/2), G: uint8(140 + shade), B: 90, A: 255})
			case (x/3+y/5)%2 == 0:
				img.Set(x, y, color.RGBA{R: 20, G: 60, B: 200, A: 255})
			default:
				img.Set(x, y, color.RGBA{R: 240, G: 200, B: 30, A: 255})
			}
		}
	}
	return img
}

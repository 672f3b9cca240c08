package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kycgate/internal/audit"
	"kycgate/internal/platform/config"
	"kycgate/internal/platform/kafka"
	"kycgate/internal/platform/kafka/consumer"
	"kycgate/internal/platform/logger"
)

const probeTimeout = 5 * time.Second

type auditOptions struct {
	brokers   []string
	topic     string
	group     string
	fromStart bool
}

func newAuditCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the verification audit trail",
	}
	cmd.AddCommand(newAuditTailCmd(root))
	return cmd
}

func newAuditTailCmd(root *rootOptions) *cobra.Command {
	opts := &auditOptions{}
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Follow audit events published to Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.FromEnv(lookupEnv)
			if err != nil {
				return err
			}
			if len(opts.brokers) == 0 {
				opts.brokers = cfg.Kafka.Brokers
			}
			if opts.topic == "" {
				opts.topic = cfg.Kafka.AuditTopic
			}
			if len(opts.brokers) == 0 {
				return fmt.Errorf("no brokers: pass --brokers or set KAFKA_BROKERS")
			}
			if opts.group == "" {
				opts.group = "kycctl-" + uuid.NewString()[:8]
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if _, err := kafka.Probe(ctx, opts.brokers, probeTimeout); err != nil {
				return err
			}
			kcfg := kafka.DefaultConsumerConfig(opts.brokers, opts.group, opts.topic)
			kcfg.FromStart = opts.fromStart
			printer := &eventPrinter{w: cmd.OutOrStdout(), format: root.output}
			c, err := consumer.New(kcfg, consumer.HandlerFunc(printer.handle), logger.NewWithWriter(cmd.ErrOrStderr(), "warn"))
			if err != nil {
				return err
			}
			defer c.Close()

			color.New(color.Faint).Fprintf(cmd.ErrOrStderr(), "following %s on %v as %s\n", opts.topic, opts.brokers, opts.group)
			if err := c.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.brokers, "brokers", nil, "Kafka seed brokers (default KAFKA_BROKERS)")
	cmd.Flags().StringVar(&opts.topic, "topic", "", "audit topic (default KAFKA_AUDIT_TOPIC)")
	cmd.Flags().StringVar(&opts.group, "group", "", "consumer group (default a fresh kycctl-* group)")
	cmd.Flags().BoolVar(&opts.fromStart, "from-start", false, "replay the topic from the earliest offset")
	return cmd
}

type eventPrinter struct {
	w      io.Writer
	format string
}

// handle reports and commits past malformed records.
func (p *eventPrinter) handle(_ context.Context, msg *consumer.Message) error {
	event, err := audit.Decode(msg)
	if err != nil {
		color.New(color.FgYellow).Fprintf(p.w, "skipping offset %d: %v\n", msg.Offset, err)
		return nil
	}
	if p.format != outputTable {
		return encode(p.w, p.format, event)
	}
	fmt.Fprintln(p.w, formatEvent(event))
	return nil
}

func formatEvent(e audit.Event) string {
	ts := e.Timestamp.Local().Format(time.DateTime)
	switch {
	case e.Type == audit.EventVerificationFailed:
		return fmt.Sprintf("%s %s %s stage=%s code=%s client=%q",
			ts, color.YellowString("ERROR "), e.RequestID, e.Reason, e.ErrorCode, e.Client)
	case e.Passed:
		return fmt.Sprintf("%s %s %s reason=%s overall=%.3f sanctions=%s client=%q",
			ts, color.GreenString("PASS  "), e.RequestID, e.Reason, e.Overall, e.SanctionsStatus, e.Client)
	default:
		return fmt.Sprintf("%s %s %s reason=%s overall=%.3f sanctions=%s client=%q",
			ts, color.RedString("REJECT"), e.RequestID, e.Reason, e.Overall, e.SanctionsStatus, e.Client)
	}
}

package broadcast

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/notifyhub/announcements/internal/domain"
	"github.com/notifyhub/announcements/internal/provider"
)

// Dispatcher drives a live broadcast: it pulls recipients into fixed-size
// batches, sends each batch concurrently, and folds the settled results into
// running totals before pulling the next batch.
type Dispatcher struct {
	senders map[domain.Channel]provider.Sender
	opts    Options
	hooks   Hooks
	logger  *zap.Logger
}

func NewDispatcher(
	senders map[domain.Channel]provider.Sender,
	opts Options,
	hooks Hooks,
	logger *zap.Logger,
) *Dispatcher {
	return &Dispatcher{
		senders: senders,
		opts:    opts.withDefaults(),
		hooks:   hooks.withDefaults(),
		logger:  logger,
	}
}

// Dispatch sends message on channels to every recipient until the source is
// exhausted or the ceiling is reached. Individual send failures are counted
// in the returned totals; only a source failure or a cancelled ctx between
// batches returns an error.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	message string,
	channels []domain.Channel,
	recipients iter.Seq2[domain.Recipient, error],
) (domain.Totals, error) {
	totals := domain.NewTotals()
	buf := make([]domain.Recipient, 0, d.opts.BatchSize)

	flush := func() {
		email, sms := Fold(d.sendBatch(ctx, message, channels, buf), totals.Failed)
		totals.Targets += len(buf)
		totals.Sent[domain.ChannelEmail] += email
		totals.Sent[domain.ChannelSMS] += sms
		buf = buf[:0]

		if progressDue(totals.Targets, d.opts.ProgressInterval) {
			d.logger.Info("broadcast progress", zap.Int("processed", totals.Targets))
		}
	}

	for r, err := range recipients {
		if err != nil {
			return domain.Totals{}, fmt.Errorf("pull recipients: %w", err)
		}

		buf = append(buf, r)
		if len(buf) < d.opts.BatchSize {
			continue
		}

		flush()
		if limitReached(totals.Targets, d.opts.MaxRecipients) {
			d.logger.Info("reached max recipient limit for broadcast",
				zap.Int("limit", d.opts.MaxRecipients),
				zap.Int("processed", totals.Targets),
			)
			break
		}
		if err := ctx.Err(); err != nil {
			return domain.Totals{}, fmt.Errorf("broadcast interrupted after %d recipients: %w", totals.Targets, err)
		}
	}

	// Trailing partial batch after the source ran dry.
	if len(buf) > 0 {
		flush()
	}

	d.logger.Info("broadcast complete",
		zap.Int("targets", totals.Targets),
		zap.Int("email_sent", totals.Sent[domain.ChannelEmail]),
		zap.Int("sms_sent", totals.Sent[domain.ChannelSMS]),
	)
	return totals, nil
}

// attempt is the result of one (recipient, channel) send task.
// A zero channel marks a skipped pair.
type attempt struct {
	channel domain.Channel
	reason  string
	err     error
}

// sendBatch runs one task per reachable (recipient, channel) pair and waits
// for all of them. It never returns early.
func (d *Dispatcher) sendBatch(
	ctx context.Context,
	message string,
	channels []domain.Channel,
	batch []domain.Recipient,
) []Settled[Outcome] {
	start := time.Now()
	attempts := make([][]attempt, len(batch))

	var g errgroup.Group
	g.SetLimit(len(batch) * len(channels))
	for i, r := range batch {
		attempts[i] = make([]attempt, len(channels))
		for j, ch := range channels {
			to, ok := r.Contact(ch)
			if !ok {
				continue
			}
			g.Go(func() error {
				attempts[i][j] = d.send(ctx, ch, to, message)
				return nil
			})
		}
	}
	_ = g.Wait()

	results := make([]Settled[Outcome], len(batch))
	for i := range batch {
		results[i] = settle(attempts[i])
	}

	d.hooks.OnBatch(len(batch), time.Since(start))
	return results
}

func settle(attempts []attempt) Settled[Outcome] {
	var o Outcome
	for _, a := range attempts {
		switch {
		case a.channel == "":
			continue
		case a.err != nil:
			return Settled[Outcome]{Err: a.err}
		case a.reason != "":
			o.Errors = append(o.Errors, a.reason)
		default:
			o.record(a.channel)
		}
	}
	return Settled[Outcome]{Value: o}
}

// send performs one attempt. A panicking sender is recovered and reported as
// an unsettled attempt.
func (d *Dispatcher) send(ctx context.Context, ch domain.Channel, to, message string) (a attempt) {
	a.channel = ch
	defer func() {
		if p := recover(); p != nil {
			a.err = fmt.Errorf("send task panicked: %v", p)
			d.logger.Error("send task panicked", zap.String("channel", string(ch)), zap.Any("panic", p))
		}
	}()

	if err := d.callSender(ctx, ch, to, message); err != nil {
		a.reason = provider.Reason(err)
		d.logger.Error("send failed",
			zap.String("channel", string(ch)),
			zap.String("reason", a.reason),
			zap.Error(err),
		)
		d.hooks.OnFailed(ch, a.reason)
		return a
	}

	d.hooks.OnSent(ch)
	return a
}

// callSender enforces SendTimeout even on senders that ignore ctx: the call is
// abandoned when the deadline passes and finishes in the background.
func (d *Dispatcher) callSender(ctx context.Context, ch domain.Channel, to, message string) error {
	sender := d.senders[ch]
	if d.opts.SendTimeout < 0 {
		_, err := sender.Send(ctx, to, message)
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.SendTimeout)
	defer cancel()

	type result struct {
		err       error
		recovered any
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{recovered: p}
			}
		}()
		_, err := sender.Send(sendCtx, to, message)
		done <- result{err: err}
	}()

	select {
	case res := <-done:
		if res.recovered != nil {
			panic(res.recovered)
		}
		return res.err
	case <-sendCtx.Done():
		if errors.Is(sendCtx.Err(), context.DeadlineExceeded) {
			return &provider.SendError{Reason: provider.ReasonTimeout, Err: sendCtx.Err()}
		}
		return sendCtx.Err()
	}
}

package docsink

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/exacode/docsink/domain"
	"github.com/sirupsen/logrus"
)

func setupHookLogger(options ...HookOption) (*logrus.Logger, *listAppender) {
	list := &listAppender{}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.TraceLevel)
	logger.AddHook(NewHook(list, options...))
	return logger, list
}

func TestHook_Fire(t *testing.T) {
	t.Run("should forward entries with fields as tags", func(t *testing.T) {
		logger, list := setupHookLogger()

		logger.WithFields(logrus.Fields{
			ThreadKey:  "worker-1",
			LoggerKey:  "payments",
			"order_id": 42,
		}).Warn("payment retried")

		event := list.last(t)
		if event.Level != domain.LevelWarn || event.Message != "payment retried" {
			t.Fatalf("\nwanted:\nWARN payment retried\ngot:\n%s %s", event.Level, event.Message)
		}
		if event.ThreadName != "worker-1" || event.LoggerName != "payments" {
			t.Fatalf("\nwanted:\nworker-1 payments\ngot:\n%s %s", event.ThreadName, event.LoggerName)
		}
		want := map[string]string{"order_id": "42"}
		if !reflect.DeepEqual(want, event.ContextTags) {
			t.Fatalf("\nwanted:\n%v\ngot:\n%v", want, event.ContextTags)
		}
		if event.Timestamp.IsZero() {
			t.Fatalf("\nwanted:\nentry time\ngot:\nzero time")
		}
	})

	t.Run("should default the logger name", func(t *testing.T) {
		logger, list := setupHookLogger(WithLoggerName("service"))

		logger.Info("ready")
		if got := list.last(t); got.LoggerName != "service" || got.ContextTags != nil {
			t.Fatalf("\nwanted:\nservice without tags\ngot:\n%+v", got)
		}
	})

	t.Run("should convert the entry error into an error chain", func(t *testing.T) {
		logger, list := setupHookLogger()

		logger.WithError(errors.New("timeout")).Error("call failed")
		event := list.last(t)
		if event.Error == nil || event.Error.Message != "timeout" {
			t.Fatalf("\nwanted:\ntimeout\ngot:\n%+v", event.Error)
		}
		if _, ok := event.ContextTags[logrus.ErrorKey]; ok {
			t.Fatalf("\nwanted:\nno error tag\ngot:\n%v", event.ContextTags)
		}
	})

	t.Run("should keep a non error value under the error key as a tag", func(t *testing.T) {
		logger, list := setupHookLogger()

		logger.WithField(logrus.ErrorKey, "text").Error("odd")
		event := list.last(t)
		if event.Error != nil || event.ContextTags[logrus.ErrorKey] != "text" {
			t.Fatalf("\nwanted:\nerror tag\ngot:\n%+v", event)
		}
	})

	t.Run("should record the caller when the logger reports it", func(t *testing.T) {
		logger, list := setupHookLogger()
		logger.SetReportCaller(true)

		logger.Info("with caller")
		frames := list.last(t).CallerFrames
		if len(frames) != 1 || frames[0].FileName != "hook_test.go" {
			t.Fatalf("\nwanted:\none frame in hook_test.go\ngot:\n%+v", frames)
		}
	})

	t.Run("should only fire for the configured levels", func(t *testing.T) {
		logger, list := setupHookLogger(WithHookLevels(logrus.ErrorLevel))

		logger.Info("skipped")
		logger.Error("kept")
		if len(list.events) != 1 || list.events[0].Message != "kept" {
			t.Fatalf("\nwanted:\n[kept]\ngot:\n%v", list.events)
		}
	})
}

func TestLevelFromLogrus(t *testing.T) {
	tests := []struct {
		level logrus.Level
		want  domain.Level
	}{
		{logrus.PanicLevel, domain.LevelError},
		{logrus.FatalLevel, domain.LevelError},
		{logrus.ErrorLevel, domain.LevelError},
		{logrus.WarnLevel, domain.LevelWarn},
		{logrus.InfoLevel, domain.LevelInfo},
		{logrus.DebugLevel, domain.LevelDebug},
		{logrus.TraceLevel, domain.LevelTrace},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := LevelFromLogrus(tt.level); got != tt.want {
				t.Fatalf("\nwanted:\n%v\ngot:\n%v", tt.want, got)
			}
		})
	}
}

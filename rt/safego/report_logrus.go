package safego

import (
	"github.com/sirupsen/logrus"
)

func (c config) logger() *logrus.Entry {
	if c.log != nil {
		return c.log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func reportPanicToLog(log *logrus.Entry, info PanicInfo) {
	fields := logrus.Fields{"panic": info.Value}
	if info.Name != "" {
		fields["name"] = info.Name
	}
	for _, t := range info.Tags {
		if t.Key == "" {
			continue
		}
		fields[t.Key] = t.Value
	}
	if len(info.Stack) > 0 {
		fields["stack"] = string(info.Stack)
	}
	log.WithFields(fields).Error("safego: recovered panic")
}

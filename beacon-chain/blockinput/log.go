package blockinput

import "github.com/sirupsen/logrus"

var log = logrus.WithField("prefix", "blockinput")

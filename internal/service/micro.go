package service

import (
	"errors"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
)

const queueGroup = "docx-field-service"

// RegisterNatsService exposes the resolver as NATS micro service "docx-fields".
func (s *Service) RegisterNatsService(nc *nats.Conn) (micro.Service, error) {
	svc, err := micro.AddService(nc, micro.Config{
		Name:        "docx-fields",
		Version:     "1.0.0",
		Description: "Returns metadata and revision statistics of word-processing packages",
	})
	if err != nil {
		return nil, err
	}
	endpoints := map[string]func([]byte) ([]byte, error){
		"fields": s.fieldsMsg,
		"value":  s.valueMsg,
		"report": s.reportMsg,
	}
	for name, fn := range endpoints {
		err := svc.AddEndpoint(name, s.natsHandler(fn), micro.WithEndpointQueueGroup(queueGroup))
		if err != nil {
			return nil, err
		}
	}
	s.log.Info("NATS micro service registered", "name", "docx-fields")
	return svc, nil
}

func (s *Service) natsHandler(fn func([]byte) ([]byte, error)) micro.HandlerFunc {
	return func(req micro.Request) {
		s.log.Debug("Received Nats request", "subject", req.Subject())
		resp, err := fn(req.Data())
		if err != nil {
			req.Error(strconv.Itoa(statusOf(err)), err.Error(), nil)
			return
		}
		req.Respond(resp)
	}
}

func (s *Service) fieldsMsg(_ []byte) ([]byte, error) {
	return json.Marshal(fields.Descriptors())
}

func (s *Service) valueMsg(data []byte) ([]byte, error) {
	var p ValueParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Join(ErrInvalidParams, err)
	}
	fv, err := s.Value(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(fv)
}

func (s *Service) reportMsg(data []byte) ([]byte, error) {
	var p ReportParams
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Join(ErrInvalidParams, err)
	}
	rep, err := s.Report(p)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rep)
}

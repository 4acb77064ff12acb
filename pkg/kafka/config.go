package pkgkafka

type KafkaConfig struct {
	Host  string
	Topic string
	Acks  string
}

func NewKafkaConfig(host, topic string) *KafkaConfig {
	if host == "" {
		host = "localhost"
	}
	return &KafkaConfig{
		Host:  host,
		Topic: topic,
		Acks:  "all",
	}
}

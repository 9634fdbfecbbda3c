// Package importer загружает workflow на сервер n8n по HTTP.
//
// # Ключевые компоненты
//
// ## Prober
//
// Проверка доступности сервера перед загрузкой. Выполняет GET по
// списку ProbePaths до первого ответа со статусом 200, 401 или 403.
// Сетевая ошибка на одном пути не прерывает проверку.
//
// ## Uploader
//
// Перебирает комбинации (схема аутентификации × endpoint) в фиксированном
// порядке: внешний цикл по схемам, внутренний по UploadEndpoints.
// Первая попытка со статусом 200 или 201 и JSON телом завершает перебор.
// Неудачные попытки не повторяются: каждый кандидат пробуется ровно один раз.
//
//	up := importer.NewUploader(importer.Config{BaseURL: "http://localhost:5678"})
//	result := up.Upload(ctx, doc.Payload(), domain.Credentials(key, user, pass))
//	if !result.Succeeded {
//	    // ручной импорт
//	}
//
// Таймауты фиксированы (UploadTimeout, ProbeTimeout) и не настраиваются
// во время выполнения.
package importer
